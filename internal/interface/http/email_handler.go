package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/config"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/mailer"
	"github.com/oksasatya/user-account-service/pkg/response"
	"github.com/oksasatya/user-account-service/pkg/validation"
)

// EmailHandler exposes an authenticated endpoint that enqueues arbitrary
// template emails for the worker to send.
type EmailHandler struct {
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewEmailHandler(pub *helpers.RabbitPublisher, logger *logrus.Logger, cfg *config.Config) *EmailHandler {
	return &EmailHandler{Pub: pub, Logger: logger, Cfg: cfg}
}

type sendEmailRequest struct {
	To       string         `json:"to" binding:"required,email"`
	Subject  string         `json:"subject"`
	Text     string         `json:"text"`
	HTML     string         `json:"html"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

// Send POST /api/email/send (auth required)
func (h *EmailHandler) Send(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		response.Error[any](c, http.StatusServiceUnavailable, "email sending disabled", nil)
		return
	}
	job := mailer.EmailJob{
		To:       req.To,
		Subject:  req.Subject,
		Text:     req.Text,
		HTML:     req.HTML,
		Template: req.Template,
		Data:     req.Data,
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		helpers.LogError(h.Logger, "email enqueue failed", err, logrus.Fields{"to": req.To})
		response.Error[any](c, http.StatusInternalServerError, "failed to enqueue email", nil)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"queued": true}, "email queued", nil)
}
