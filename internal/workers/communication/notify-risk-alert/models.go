package notifyriskalert

import (
	"context"

	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/models"
)

type Input struct {
	Countries []string            `json:"countries"`
	Year      *int                `json:"year,omitempty"`
	Records   []models.RiskRecord `json:"records"`
	Report    string              `json:"report,omitempty"`
}

type Output struct {
	Alerted   bool     `json:"alerted"`
	Countries []string `json:"alertedCountries"`
	EmailID   string   `json:"emailMessageId,omitempty"`
	SNSID     string   `json:"snsMessageId,omitempty"`
}

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

// AlertPublisher is satisfied by aws.SNSClient.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, topicARN, subject, message string, attrs map[string]string) (string, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	Email  EmailSender
	Alerts AlertPublisher
}
