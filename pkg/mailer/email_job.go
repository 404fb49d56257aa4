package mailer

import "time"

// TemplatePasswordReset names the job a downstream delivery worker renders
// into a reset email.
const TemplatePasswordReset = "password_reset"

// EmailJob is the JSON payload put on the RabbitMQ queue for a delivery worker.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}

// NewPasswordResetJob builds the queued job for a reset notice.
func NewPasswordResetJob(n ResetNotice) EmailJob {
	return EmailJob{
		To:       n.Email,
		Subject:  "Reset your password",
		Template: TemplatePasswordReset,
		Data: map[string]any{
			"UserID":    n.UserID,
			"Token":     n.Token,
			"ExpiresAt": n.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}
}
