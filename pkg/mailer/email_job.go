package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Text/HTML are used directly when set; otherwise Template and Data drive
// rendering in the worker.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome", "verify_email", "reset_password", "login_notification"
	Data     map[string]any `json:"data,omitempty"`
}
