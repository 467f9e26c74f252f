package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lepto-risk-workers/internal/chat"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/validation"
	"lepto-risk-workers/internal/engine"
	"lepto-risk-workers/internal/models"
	"lepto-risk-workers/internal/surveillance"
	queryriskrecords "lepto-risk-workers/internal/workers/data-access/query-risk-records"
)

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func sampleRecords() []models.RiskRecord {
	return []models.RiskRecord{
		{Year: 2010, Country: "France", RiskPercentage: models.Float(20.1), RiskLevel: "Low", Recommendations: "Wear boots."},
		{Year: 2010, Country: "Spain", RiskPercentage: models.Float(30.2), RiskLevel: "Moderate"},
		{Year: 2011, Country: "France", RiskPercentage: models.Float(25.4), RiskLevel: "Moderate"},
		{Year: 2015, Country: "Germany", RiskPercentage: models.Float(42.3), RiskLevel: "Moderate"},
	}
}

func newTestRouter(t *testing.T, ready func(context.Context) error) *gin.Engine {
	log := createTestLogger(t)
	v, err := validation.NewValidator(engine.DefaultMaxCompare)
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		Engine: engine.New(engine.Options{
			Source: queryriskrecords.NewMemorySource(sampleRecords()),
			Logger: log,
		}),
		Validator: v,
		Logger:    log,
		Ready:     ready,
		Mode:      gin.TestMode,
	})
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==========================
// Infrastructure endpoints
// ==========================

func TestRouter_HealthAndReady(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	w = do(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestRouter(t, func(context.Context) error { return errors.New("postgres down") })
	w = do(down, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_KeepsIncomingRequestID(t *testing.T) {
	r := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestRouter_Metrics(t *testing.T) {
	w := do(newTestRouter(t, nil), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ==========================
// Record endpoints
// ==========================

func TestRouter_RecordsAndCountries(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api/riskanalysis", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []models.RiskRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 4)

	w = do(r, http.MethodGet, "/api/riskanalysis/countries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["France","Germany","Spain"]`, w.Body.String())

	w = do(r, http.MethodGet, "/api/riskanalysis/predictions/France", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, 2010, records[0].Year)
}

func TestRouter_Prediction(t *testing.T) {
	w := do(newTestRouter(t, nil), http.MethodGet, "/api/prediction", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"outbreak":false,"details":"No outbreak predicted"}`, w.Body.String())
}

func TestRouter_Map(t *testing.T) {
	w := do(newTestRouter(t, nil), http.MethodGet, "/api/riskanalysis/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var markers []models.MapMarker
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &markers))
	assert.Len(t, markers, len(models.DefaultVocabulary))
}

func TestRouter_MapForYear(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api/riskanalysis/map?year=2010", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var markers []models.MapMarker
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &markers))
	for _, m := range markers {
		switch m.Country {
		case "France":
			assert.Equal(t, 2010, m.Year)
			assert.Equal(t, "Low", m.RiskLevel)
		case "Germany":
			assert.Zero(t, m.Year)
		}
	}

	w = do(r, http.MethodGet, "/api/riskanalysis/map?year=recent", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==========================
// Query endpoints
// ==========================

func TestRouter_Chat(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/riskanalysis/chat", models.ChatRequest{Message: "What about France?"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "For France, the risk level is Low (20.1%). Wear boots.", resp.Response)
	require.NotNil(t, resp.Data)

	w = do(r, http.MethodPost, "/api/riskanalysis/chat", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestRouter_Query(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/riskanalysis/query", models.ChatRequest{Message: "How is Germany doing in 2015?"})
	require.Equal(t, http.StatusOK, w.Code)
	var result models.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.QueryModeSingleYear, result.Mode)
	assert.Equal(t, "2015 (42.3%) - Primary", result.Statistics.PeakText)

	w = do(r, http.MethodPost, "/api/riskanalysis/query", models.ChatRequest{Message: "hello there"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_ENTITY_RECOGNIZED")
}

func TestRouter_Compare(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/riskanalysis/compare", models.CompareRequest{Countries: []string{"France", "Spain"}})
	require.Equal(t, http.StatusOK, w.Code)
	var result models.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.QueryModeMultiComparison, result.Mode)
	require.Len(t, result.Series.Rows, 2)
	_, spain2011 := result.Series.Rows[1].Value("Spain")
	assert.False(t, spain2011)

	w = do(r, http.MethodPost, "/api/riskanalysis/compare", models.CompareRequest{Countries: []string{"France", "Spain", "Germany", "Italy"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SELECTION")

	w = do(r, http.MethodPost, "/api/riskanalysis/compare", models.CompareRequest{Countries: []string{"Malta"}, Year: models.Int(2015)})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NO_DATA_FOR_SELECTION")
}

func TestRouter_ChatSession(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/api/riskanalysis/chat/messages", models.ChatRequest{Message: "France"})
	require.Equal(t, http.StatusOK, w.Code)
	var reply SessionReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	require.NotNil(t, reply.Current)
	assert.Equal(t, chat.PhaseReported, reply.Phase)
	assert.Len(t, reply.Transcript, 3)

	reply = SessionReply{}
	w = do(r, http.MethodPost, "/api/riskanalysis/chat/messages", models.ChatRequest{Message: "nothing known"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	require.NotNil(t, reply.Current)
	assert.Equal(t, []string{"France"}, reply.Current.Entities.Countries)
	assert.Equal(t, chat.PhaseNoEntities, reply.Phase)
	assert.Len(t, reply.Transcript, 5)

	reply = SessionReply{}
	w = do(r, http.MethodPost, "/api/riskanalysis/chat/messages", models.ChatRequest{Message: "Malta"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, chat.PhaseFailed, reply.Phase)
	assert.NotEmpty(t, reply.Error)
	require.NotNil(t, reply.Current)

	w = do(r, http.MethodGet, "/api/riskanalysis/chat/transcript", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var transcript []models.ChatMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &transcript))
	assert.Len(t, transcript, 7)
}

// ==========================
// Surveillance endpoints
// ==========================

func newSurveillanceRouter(t *testing.T) *gin.Engine {
	log := createTestLogger(t)
	store := surveillance.NewMemoryStore([]models.SurveillanceRecord{
		{Year: 2011, CountryCode: "FR", CountryName: "France", LeptospirosisRate: models.Float(1.2)},
		{Year: 2010, CountryCode: "FR", CountryName: "France", LeptospirosisRate: models.Float(0.9)},
		{Year: 2010, CountryCode: "ES", CountryName: "Spain"},
	})
	return NewRouter(RouterConfig{
		Engine:       engine.New(engine.Options{Source: queryriskrecords.NewMemorySource(nil), Logger: log}),
		Logger:       log,
		Surveillance: surveillance.NewService(store, time.Second, log),
		Mode:         gin.TestMode,
	})
}

func TestRouter_SurveillanceRoutesNeedAService(t *testing.T) {
	w := do(newTestRouter(t, nil), http.MethodGet, "/api/leptospirosis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SurveillanceRecords(t *testing.T) {
	w := do(newSurveillanceRouter(t), http.MethodGet, "/api/leptospirosis", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var records []models.SurveillanceRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "ES", records[0].CountryCode)
	assert.Equal(t, 2011, records[2].Year)
}

func TestRouter_SurveillanceTable(t *testing.T) {
	r := newSurveillanceRouter(t)

	w := do(r, http.MethodGet, "/api/leptospirosis/table?search=FRA&sort=leptospirosis_rate&order=desc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []models.SurveillanceRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.InDelta(t, 1.2, *rows[0].LeptospirosisRate, 1e-9)

	w = do(r, http.MethodGet, "/api/leptospirosis/table?sort=population", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/leptospirosis/table?order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_SurveillanceMap(t *testing.T) {
	r := newSurveillanceRouter(t)

	w := do(r, http.MethodGet, "/api/leptospirosis/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view models.SurveillanceMap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2010, view.Year)
	assert.Equal(t, []int{2010, 2011}, view.Years)
	require.Len(t, view.Markers, 2)
	assert.Equal(t, surveillance.NoRateColor, view.Markers[0].Color)

	w = do(r, http.MethodGet, "/api/leptospirosis/map?year=2011", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Markers, 1)
	assert.Equal(t, "FR", view.Markers[0].CountryCode)

	w = do(r, http.MethodGet, "/api/leptospirosis/map?year=20x1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_SurveillanceCountriesAndSeries(t *testing.T) {
	r := newSurveillanceRouter(t)

	w := do(r, http.MethodGet, "/api/leptospirosis/countries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"code":"ES","name":"Spain"},{"code":"FR","name":"France"}]`, w.Body.String())

	w = do(r, http.MethodGet, "/api/leptospirosis/series/fr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var series models.SurveillanceSeries
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &series))
	require.Len(t, series.Points, 2)
	assert.Equal(t, 2010, series.Points[0].Year)

	w = do(r, http.MethodGet, "/api/leptospirosis/series/IT", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(createTestLogger(t)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "boom")
}
