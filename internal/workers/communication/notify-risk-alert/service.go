package notifyriskalert

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "lepto-risk-workers/internal/common/errors"
	"lepto-risk-workers/internal/common/logger"
	"lepto-risk-workers/internal/common/metrics"
	"lepto-risk-workers/internal/models"
	computestatistics "lepto-risk-workers/internal/workers/risk-query/compute-statistics"
)

type Service struct {
	config *Config
	logger logger.Logger
	email  EmailSender
	alerts AlertPublisher
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		email:  deps.Email,
		alerts: deps.Alerts,
	}
}

// Triggered returns the first record of each country that crosses the alert
// threshold, in country order.
func Triggered(records []models.RiskRecord, countries []string, threshold float64) []models.RiskRecord {
	var out []models.RiskRecord
	for _, country := range countries {
		for _, r := range records {
			if !strings.EqualFold(r.Country, country) {
				continue
			}
			if isAlert(r, threshold) {
				out = append(out, r)
			}
			break
		}
	}
	return out
}

func isAlert(r models.RiskRecord, threshold float64) bool {
	if strings.EqualFold(strings.TrimSpace(r.RiskLevel), computestatistics.RiskLevelVeryHigh) {
		return true
	}
	return r.HasRisk() && r.Risk() >= threshold
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	hits := Triggered(input.Records, input.Countries, s.config.AlertThreshold)
	output := &Output{Countries: make([]string, 0, len(hits))}
	if len(hits) == 0 {
		s.logger.Debug("no country above alert threshold", map[string]interface{}{
			"countries": input.Countries,
			"threshold": s.config.AlertThreshold,
		})
		return output, nil
	}
	for _, r := range hits {
		output.Countries = append(output.Countries, r.Country)
	}

	subject := fmt.Sprintf("Leptospirosis risk alert: %s", strings.Join(output.Countries, ", "))
	body := alertBody(hits, input.Report)

	if s.config.EmailEnabled && s.email != nil {
		id, err := s.email.SendText(ctx, s.config.FromEmail, s.config.Recipients, subject, body)
		if err != nil {
			return nil, apperrors.NewNotificationSendFailedError("ses", err)
		}
		output.EmailID = id
		metrics.RiskAlertsSent.WithLabelValues("ses").Inc()
	}

	if s.config.SNSEnabled && s.alerts != nil {
		attrs := map[string]string{
			"countries": strings.Join(output.Countries, ","),
		}
		if input.Year != nil {
			attrs["year"] = strconv.Itoa(*input.Year)
		}
		id, err := s.alerts.PublishAlert(ctx, s.config.TopicARN, subject, body, attrs)
		if err != nil {
			return nil, apperrors.NewNotificationSendFailedError("sns", err)
		}
		output.SNSID = id
		metrics.RiskAlertsSent.WithLabelValues("sns").Inc()
	}

	output.Alerted = output.EmailID != "" || output.SNSID != ""
	s.logger.Info("risk alert processed", map[string]interface{}{
		"countries": output.Countries,
		"alerted":   output.Alerted,
	})
	return output, nil
}

func alertBody(hits []models.RiskRecord, report string) string {
	var b strings.Builder
	for _, r := range hits {
		level := strings.TrimSpace(r.RiskLevel)
		if level == "" {
			level = computestatistics.RiskLevel(r.Risk())
		}
		fmt.Fprintf(&b, "%s %d: %s (%.1f%%)\n", r.Country, r.Year, level, r.Risk())
	}
	if report != "" {
		b.WriteString("\n")
		b.WriteString(report)
		b.WriteString("\n")
	}
	return b.String()
}
