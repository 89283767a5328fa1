package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
	"github.com/Eklavya-kapoor/armor-api/internal/trust"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type cannedClassifier struct {
	result *core.ClassifierResult
}

func (c *cannedClassifier) Classify(_ context.Context, _ string) (*core.ClassifierResult, error) {
	out := *c.result
	return &out, nil
}

func newTestServer(result *core.ClassifierResult) *Server {
	logger := zap.NewNop()
	service := core.NewScanService(
		core.NewFeatureExtractor(),
		&cannedClassifier{result: result},
		core.NewRiskScorer(nil, core.DefaultMediumThreshold, core.DefaultHighThreshold),
		textutil.NewTextProcessor(logger),
		trust.NewChecker(nil, logger),
		nil,
		logger,
		false,
		time.Hour,
		1000,
	)
	return NewServer(service, logger, "127.0.0.1:0")
}

func postScan(t *testing.T, server *Server, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&core.ClassifierResult{Label: core.LabelBenign, Confidence: 0.9})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestScanEndpoint(t *testing.T) {
	server := newTestServer(&core.ClassifierResult{
		Label:      core.LabelScam,
		Confidence: 0.9,
		ModelUsed:  "test-model",
	})

	body, err := json.Marshal(core.ScanRequest{
		Text:   "URGENT! Verify your account now: http://bit.ly/x",
		Sender: "security@examp1e.com",
	})
	require.NoError(t, err)

	rec := postScan(t, server, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var assessment core.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))

	assert.Equal(t, core.RiskLevelHigh, assessment.RiskLevel)
	assert.GreaterOrEqual(t, assessment.RiskScore, core.DefaultHighThreshold)
	assert.NotEmpty(t, assessment.Explanation)
	assert.NotEmpty(t, assessment.Features)
	assert.Equal(t, "test-model", assessment.ModelUsed)
}

func TestScanEndpointResponseShape(t *testing.T) {
	server := newTestServer(&core.ClassifierResult{Label: core.LabelBenign, Confidence: 0.9})

	rec := postScan(t, server, []byte(`{"text":"see you at lunch"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"risk_score", "risk_level", "explanation", "features", "processing_time_ms"} {
		assert.Contains(t, raw, key)
	}
}

func TestScanEndpointRejectsEmptyText(t *testing.T) {
	server := newTestServer(&core.ClassifierResult{Label: core.LabelBenign, Confidence: 0.9})

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{}`} {
		rec := postScan(t, server, []byte(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestScanEndpointRejectsMalformedJSON(t *testing.T) {
	server := newTestServer(&core.ClassifierResult{Label: core.LabelBenign, Confidence: 0.9})

	rec := postScan(t, server, []byte(`{"text": not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
