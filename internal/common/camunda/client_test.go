package camunda

import (
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"

	"lepto-risk-workers/internal/common/config"
	apperrors "lepto-risk-workers/internal/common/errors"
)

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, Backoff(rc, 0))
	assert.Equal(t, 2*time.Second, Backoff(rc, 1))
	assert.Equal(t, 4*time.Second, Backoff(rc, 2))
	assert.Equal(t, 5*time.Second, Backoff(rc, 3))
	assert.Equal(t, 5*time.Second, Backoff(rc, 62))
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("rpc error: code = Unavailable")))
	assert.True(t, isRetryableZeebeError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(errors.New("permission denied")))
}

func TestMapZeebeError_IsTransportFailure(t *testing.T) {
	err := mapZeebeError(errors.New("connection refused"), "localhost:26500")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTransportFailure))
	assert.Nil(t, mapZeebeError(nil, "localhost:26500"))
}

func TestClientConfigFrom(t *testing.T) {
	cfg := ClientConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 2500})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.Equal(t, 2500*time.Millisecond, cfg.ConnectionTimeout)
	assert.True(t, cfg.UsePlaintextConnection)

	cfg = ClientConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500"})
	assert.Equal(t, 10*time.Second, cfg.ConnectionTimeout)
}

func TestInstrument_CallsHandler(t *testing.T) {
	called := false
	h := Instrument("test-task", func(client worker.JobClient, job entities.Job) {
		called = true
	})
	h(nil, entities.Job{})
	assert.True(t, called)
}

type stubValidator struct {
	taskType string
}

func (s *stubValidator) ValidateInput(taskType string, variables []byte) error {
	s.taskType = taskType
	return nil
}

func TestValidate_PassesValidJobsThrough(t *testing.T) {
	v := &stubValidator{}
	called := false
	h := Validate("extract-entities", v, apperrors.NewErrorHandler(nil), nil, func(client worker.JobClient, job entities.Job) {
		called = true
	})
	h(nil, entities.Job{})

	assert.True(t, called)
	assert.Equal(t, "extract-entities", v.taskType)
}
