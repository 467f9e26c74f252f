package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/surveillance"
)

func (h *Handlers) SurveillanceRecords(c *gin.Context) {
	records, err := h.surveillance.Records(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// SurveillanceTable accepts ?search=, ?sort=<column> and ?order=asc|desc.
func (h *Handlers) SurveillanceTable(c *gin.Context) {
	q := surveillance.TableQuery{
		Search:  c.Query("search"),
		SortKey: c.Query("sort"),
	}
	switch strings.ToLower(c.Query("order")) {
	case "", "asc", "ascending":
	case "desc", "descending":
		q.Descending = true
	default:
		writeError(c, apperrors.NewInvalidInputError("order must be asc or desc"))
		return
	}

	rows, err := h.surveillance.Table(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handlers) SurveillanceMap(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	view, err := h.surveillance.Map(c.Request.Context(), year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) SurveillanceCountries(c *gin.Context) {
	countries, err := h.surveillance.Countries(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (h *Handlers) SurveillanceSeries(c *gin.Context) {
	series, err := h.surveillance.Series(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// yearParam reads an optional ?year=. It writes a 400 and returns false
// when the value is not an integer.
func yearParam(c *gin.Context) (*int, bool) {
	raw, present := c.GetQuery("year")
	if !present || raw == "" {
		return nil, true
	}
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		writeError(c, apperrors.NewInvalidInputError("year must be an integer"))
		return nil, false
	}
	return &year, true
}
