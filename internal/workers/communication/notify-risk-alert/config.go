package notifyriskalert

import (
	"fmt"
	"time"

	"lepto-risk-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	AlertThreshold float64
	EmailEnabled   bool
	FromEmail      string
	Recipients     []string
	SNSEnabled     bool
	TopicARN       string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:        15 * time.Second,
		AlertThreshold: 75,
	}
}

// LoadConfig reads the notifications section.
func LoadConfig(cfg config.NotificationConfig, timeout time.Duration) *Config {
	c := DefaultConfig()
	if timeout > 0 {
		c.Timeout = timeout
	}
	if cfg.AlertThreshold > 0 {
		c.AlertThreshold = cfg.AlertThreshold
	}
	c.EmailEnabled = cfg.SES.Enabled
	c.FromEmail = cfg.SES.FromEmail
	c.Recipients = cfg.SES.Recipients
	c.SNSEnabled = cfg.SNS.Enabled
	c.TopicARN = cfg.SNS.TopicARN
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.AlertThreshold <= 0 || c.AlertThreshold > 100 {
		return fmt.Errorf("alert_threshold must be in (0, 100]")
	}
	if c.EmailEnabled {
		if c.FromEmail == "" {
			return fmt.Errorf("ses.from_email is required")
		}
		if len(c.Recipients) == 0 {
			return fmt.Errorf("ses.recipients is required")
		}
	}
	if c.SNSEnabled && c.TopicARN == "" {
		return fmt.Errorf("sns.topic_arn is required")
	}
	return nil
}
