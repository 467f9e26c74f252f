package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lepto-risk-workers/internal/chat"
	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/validation"
	"lepto-risk-workers/internal/engine"
	"lepto-risk-workers/internal/models"
	"lepto-risk-workers/internal/surveillance"
)

type Handlers struct {
	engine       *engine.Engine
	session      *chat.Session
	surveillance *surveillance.Service
	validator    *validation.Validator
	ready        func(ctx context.Context) error
	logger       logger.Logger
}

// SessionReply is the body returned for a chat session message.
type SessionReply struct {
	Reply      models.ChatMessage   `json:"reply"`
	Phase      chat.Phase           `json:"phase"`
	Error      string               `json:"error,omitempty"`
	Current    *models.QueryResult  `json:"current,omitempty"`
	Transcript []models.ChatMessage `json:"transcript"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handlers) Ready(c *gin.Context) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handlers) Records(c *gin.Context) {
	records, err := h.engine.Records(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handlers) Countries(c *gin.Context) {
	countries, err := h.engine.Countries(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (h *Handlers) CountryPredictions(c *gin.Context) {
	records, err := h.engine.Country(c.Request.Context(), c.Param("country"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handlers) Prediction(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Prediction())
}

func (h *Handlers) Chat(c *gin.Context) {
	var req models.ChatRequest
	if !h.bind(c, validation.SchemaChatRequest, &req, apperrors.NewInvalidInputError) {
		return
	}
	resp, err := h.engine.Chat(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) SessionMessage(c *gin.Context) {
	var req models.ChatRequest
	if !h.bind(c, validation.SchemaChatRequest, &req, apperrors.NewInvalidInputError) {
		return
	}
	reply, st := h.session.Submit(c.Request.Context(), req.Message)
	c.JSON(http.StatusOK, SessionReply{
		Reply:      reply,
		Phase:      st.Phase,
		Error:      st.Error,
		Current:    st.Current,
		Transcript: st.Transcript,
	})
}

func (h *Handlers) Transcript(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Transcript())
}

func (h *Handlers) Query(c *gin.Context) {
	var req models.ChatRequest
	if !h.bind(c, validation.SchemaChatRequest, &req, apperrors.NewInvalidInputError) {
		return
	}
	result, err := h.engine.Ask(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) Compare(c *gin.Context) {
	var req models.CompareRequest
	if !h.bind(c, validation.SchemaCompareRequest, &req, apperrors.NewInvalidSelectionError) {
		return
	}
	result, err := h.engine.Compare(c.Request.Context(), req.Countries, req.Year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) Map(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	markers, err := h.engine.Markers(c.Request.Context(), year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, markers)
}

// bind validates the raw body against schema before decoding it into dst.
// Schema violations are reported through reject.
func (h *Handlers) bind(c *gin.Context, schema string, dst interface{}, reject func(string) *apperrors.StandardError) bool {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, apperrors.NewInvalidInputError("read body: "+err.Error()))
		return false
	}
	if h.validator != nil {
		result, err := h.validator.ValidateJSON(schema, raw)
		if err != nil {
			writeError(c, apperrors.NewInvalidInputError(err.Error()))
			return false
		}
		if !result.Valid {
			writeError(c, reject(result.Error()))
			return false
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		writeError(c, apperrors.NewInvalidInputError(err.Error()))
		return false
	}
	return true
}
