package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/config"
	userapp "github.com/oksasatya/user-account-service/internal/application"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/user-account-service/pkg/mailer/templates"
	"github.com/oksasatya/user-account-service/pkg/response"
	"github.com/oksasatya/user-account-service/pkg/validation"
)

// AuthHandler owns the email verification and password reset flows.
// One-time tokens live in Redis; every step leaves an audit row in postgres.
type AuthHandler struct {
	Repo   repo.UserRepository
	Svc    *userapp.Service
	RDB    *redis.Client
	Logger *logrus.Logger
	Cfg    *config.Config
	Pub    *helpers.RabbitPublisher
	DB     *pgxpool.Pool
}

func NewAuthHandler(repository repo.UserRepository, svc *userapp.Service, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher, db *pgxpool.Pool) *AuthHandler {
	return &AuthHandler{Repo: repository, Svc: svc, RDB: rdb, Logger: logger, Cfg: cfg, Pub: pub, DB: db}
}

func keyVerifyToken(t string) string { return "email:verify:token:" + t }
func keyResetToken(t string) string  { return "pwd:reset:token:" + t }
func keyVerified(uid string) string  { return "user:verified:" + uid }

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (h *AuthHandler) audit(c *gin.Context, userID, email, action string, metadata map[string]any) {
	if h.DB == nil {
		return
	}
	md, _ := json.Marshal(metadata)
	_, err := h.DB.Exec(c.Request.Context(), `
		INSERT INTO audit_logs (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6)
	`, userID, email, action, clientIP(c), c.GetHeader("User-Agent"), md)
	if err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

func (h *AuthHandler) enqueue(c *gin.Context, job mailer.EmailJob) {
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		return
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("to", job.To).Warn("email enqueue failed")
	}
}

// VerifyInit POST /api/auth/verify/init (auth required)
// Issues a one-time token and mails a verification link.
func (h *AuthHandler) VerifyInit(c *gin.Context) {
	uid := c.GetString("userID")
	if uid == "" {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if ok, err := h.Repo.IsVerified(uid); err == nil && ok {
		if h.RDB != nil {
			_ = h.RDB.Set(c.Request.Context(), keyVerified(uid), "1", 0).Err()
		}
		h.audit(c, uid, "", "verify_init_already", nil)
		response.Success(c, http.StatusOK, gin.H{"already_verified": true}, "already verified", nil)
		return
	}

	tok, err := genToken(32)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "token generation failed", nil)
		return
	}
	if h.RDB != nil {
		h.RDB.Set(c.Request.Context(), keyVerifyToken(tok), uid, 24*time.Hour)
	}
	link := h.Cfg.VerifyEmailURL + "?token=" + tok
	h.audit(c, uid, "", "verify_init_issue", map[string]any{"link": link})

	u, err := h.Svc.GetProfile(uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	h.enqueue(c, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.VerifyEmail,
		Data:     map[string]any{"Name": u.Name, "VerifyLink": link},
	})
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "verification email sent", nil)
}

type verifyConfirmRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyConfirm POST /api/auth/verify/confirm
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req verifyConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if h.RDB == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "verification unavailable", nil)
		return
	}
	uid, err := h.RDB.Get(c.Request.Context(), keyVerifyToken(req.Token)).Result()
	if err != nil || uid == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	if err := h.Repo.MarkVerified(uid); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to mark verified", nil)
		return
	}
	_ = h.RDB.Del(c.Request.Context(), keyVerifyToken(req.Token)).Err()
	_ = h.RDB.Set(c.Request.Context(), keyVerified(uid), "1", 0).Err()
	h.audit(c, uid, "", "verify_confirm", nil)
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
}

type resetInitRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetInit POST /api/auth/reset/init
// Always answers 200 so the endpoint does not leak account existence.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req resetInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.GetUserByEmail(c.Request.Context(), req.Email)
	if err == nil && u != nil {
		tok, terr := genToken(32)
		if terr == nil {
			if h.RDB != nil {
				h.RDB.Set(c.Request.Context(), keyResetToken(tok), u.ID, time.Hour)
			}
			link := h.Cfg.ResetPasswordURL + "?token=" + tok
			h.audit(c, u.ID, u.Email, "reset_init", nil)
			h.enqueue(c, mailer.EmailJob{
				To:       u.Email,
				Template: mailtpl.ResetPassword,
				Data:     map[string]any{"ResetLink": link},
			})
		}
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "if the account exists, a reset email was sent", nil)
}

type resetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,pwd"`
}

// ResetConfirm POST /api/auth/reset/confirm
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if h.RDB == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "reset unavailable", nil)
		return
	}
	uid, err := h.RDB.Get(c.Request.Context(), keyResetToken(req.Token)).Result()
	if err != nil || uid == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), uid, req.Password); err != nil {
		var verr *userapp.ValidationError
		if errors.As(err, &verr) {
			response.Error[any](c, http.StatusBadRequest, "validation failed", validation.DetailsFromFieldErrors(verr.Fields))
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to reset password", nil)
		return
	}
	_ = h.RDB.Del(c.Request.Context(), keyResetToken(req.Token)).Err()
	// Drop the active session so old tokens cannot ride the new password
	_ = h.RDB.Del(c.Request.Context(), "user:session:"+uid).Err()
	h.audit(c, uid, "", "reset_confirm", nil)
	response.Success(c, http.StatusOK, gin.H{"reset": true}, "password reset", nil)
}
