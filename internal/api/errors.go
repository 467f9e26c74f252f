package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "lepto-risk-workers/internal/common/errors"
)

type ErrorResponse struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidSelection, apperrors.ErrCodeInvalidQueryType:
		return http.StatusBadRequest
	case apperrors.ErrCodeNoEntityRecognized:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeNoDataForSelection:
		return http.StatusNotFound
	case apperrors.ErrCodeTransportFailure:
		return http.StatusBadGateway
	case apperrors.ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	stdErr, ok := apperrors.As(err)
	if !ok {
		stdErr = apperrors.NewInternalError(err)
	}

	resp := ErrorResponse{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		RequestID: c.GetString(ctxRequestID),
	}
	status := statusFor(stdErr.Code)
	if status < http.StatusInternalServerError {
		resp.Details = stdErr.Details
		resp.Metadata = stdErr.Metadata
	}
	c.JSON(status, resp)
}
