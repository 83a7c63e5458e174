package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/apperr"
	"github.com/jime0083/BatsuGaku/localdate"
	"github.com/jime0083/BatsuGaku/logger"
)

const signatureHeader = "X-Signature-256"

const (
	firstPushTitle = "今日も学習お疲れさまです"
	firstPushBody  = "これで連続学習日数が更新されました！"
)

// GitHubWebhook ingests push events. The signature is verified over the
// exact raw body before anything is written; duplicate deliveries collapse
// onto the same day bucket.
func (h *Handler) GitHubWebhook(c *gin.Context) {
	uid := c.Query("uid")
	if uid == "" {
		respondError(c, fmt.Errorf("%w: missing uid", apperr.ErrBadRequest))
		return
	}

	if event := c.GetHeader("X-GitHub-Event"); event != "push" {
		c.JSON(http.StatusOK, gin.H{"message": "ignored", "event": event})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, fmt.Errorf("%w: read body: %v", apperr.ErrBadRequest, err))
		return
	}

	ctx := c.Request.Context()

	user, err := h.Store.GetUser(ctx, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	if user.GitHub == nil || user.GitHub.WebhookSecretEncrypted == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "webhook not provisioned for user"})
		return
	}

	secret, err := h.Cipher.Decrypt(user.GitHub.WebhookSecretEncrypted)
	if err != nil {
		respondError(c, fmt.Errorf("decrypt webhook secret for user %s: %w", uid, err))
		return
	}

	if !verifySignature(body, secret, c.GetHeader(signatureHeader)) {
		respondError(c, fmt.Errorf("%w: webhook signature mismatch", apperr.ErrAuthentication))
		return
	}

	now := h.now()
	day := localdate.At(now, h.Zone)

	firstToday, err := h.Store.RecordPush(ctx, uid, day, now)
	if err != nil {
		respondError(c, fmt.Errorf("record push for user %s: %w", uid, err))
		return
	}

	if firstToday && user.Notifications.StudyCompleted && user.Notifications.PushToken != "" {
		if err := h.Notifier.Send(ctx, user.Notifications.PushToken, firstPushTitle, firstPushBody); err != nil {
			logger.Get().Warn("first-push notification failed",
				zap.String("user_id", uid),
				zap.Error(err))
		}
	}

	logger.Get().Info("push recorded",
		zap.String("user_id", uid),
		zap.String("day", day.Key()),
		zap.Bool("first_today", firstToday))
	c.JSON(http.StatusOK, gin.H{"message": "recorded", "first_today": firstToday})
}

// verifySignature checks the HMAC-SHA256 of the raw payload against the
// sha256=<hex> header value in constant time.
func verifySignature(body []byte, secret, header string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	supplied, err := hex.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(supplied, mac.Sum(nil))
}
