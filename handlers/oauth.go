package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/apperr"
	"github.com/jime0083/BatsuGaku/logger"
	"github.com/jime0083/BatsuGaku/models"
	"github.com/jime0083/BatsuGaku/oauth"
)

// OAuthStart issues a single-use state, builds the provider authorization
// URL, and redirects the browser there.
func (h *Handler) OAuthStart(c *gin.Context) {
	provider := c.Param("provider")
	if provider != models.ProviderGitHub && provider != models.ProviderX {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}

	uid := c.Query("uid")
	redirectURI := c.Query("redirectUri")
	if uid == "" || redirectURI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uid and redirectUri are required"})
		return
	}

	now := h.now()
	state := &models.OAuthState{
		ID:          uuid.NewString(),
		Provider:    provider,
		UserID:      uid,
		RedirectURI: redirectURI,
		CreatedAt:   now,
		ExpiresAt:   now.Add(models.StateTTL),
	}

	callback := h.callbackURL(c, provider)

	var authorizeURL string
	switch provider {
	case models.ProviderGitHub:
		authorizeURL = h.GitHub.AuthorizeURL(callback, state.ID)
	case models.ProviderX:
		verifier, err := oauth.NewCodeVerifier()
		if err != nil {
			respondError(c, fmt.Errorf("generate code verifier: %w", err))
			return
		}
		state.CodeVerifier = verifier
		authorizeURL = h.X.AuthorizeURL(callback, state.ID, oauth.S256Challenge(verifier))
	}

	if err := h.Store.CreateState(c.Request.Context(), state); err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, authorizeURL)
}

// OAuthCallback completes the link: it consumes the state, exchanges the
// code, persists the encrypted token, and bounces the browser back to the
// app. A callback hit without code or state gets a small diagnostic page,
// since that is a person poking the URL, not the provider.
func (h *Handler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	if provider != models.ProviderGitHub && provider != models.ProviderX {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}

	code := c.Query("code")
	stateID := c.Query("state")
	if code == "" || stateID == "" {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, diagnosticPage(provider, c.Request.URL.Query()))
		return
	}

	ctx := c.Request.Context()

	state, err := h.Store.ConsumeState(ctx, stateID)
	if err != nil {
		respondError(c, err)
		return
	}
	if state.Provider != provider {
		respondError(c, fmt.Errorf("%w: state for %s used on %s callback", apperr.ErrProviderMismatch, state.Provider, provider))
		return
	}

	callback := h.callbackURL(c, provider)

	switch provider {
	case models.ProviderGitHub:
		err = h.completeGitHubLink(ctx, c, state, code, callback)
	case models.ProviderX:
		err = h.completeXLink(ctx, state, code, callback)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	redirect, err := url.Parse(state.RedirectURI)
	if err != nil {
		respondError(c, fmt.Errorf("%w: redirectUri %q", apperr.ErrBadRequest, state.RedirectURI))
		return
	}
	q := redirect.Query()
	q.Set("provider", provider)
	q.Set("status", "success")
	redirect.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, redirect.String())
}

func (h *Handler) completeGitHubLink(ctx context.Context, c *gin.Context, state *models.OAuthState, code, callback string) error {
	token, err := h.GitHub.Exchange(ctx, code, callback)
	if err != nil {
		return err
	}
	profile, err := h.GitHub.Profile(ctx, token)
	if err != nil {
		return fmt.Errorf("github profile: %w", err)
	}

	encToken, err := h.Cipher.Encrypt(token)
	if err != nil {
		return fmt.Errorf("encrypt github token: %w", err)
	}

	secret := uuid.NewString()
	encSecret, err := h.Cipher.Encrypt(secret)
	if err != nil {
		return fmt.Errorf("encrypt webhook secret: %w", err)
	}

	hookURL := h.requestOrigin(c) + "/webhook?uid=" + url.QueryEscape(state.UserID)

	auth := &models.GitHubAuth{
		ID:                     profile.ID,
		Username:               profile.Username,
		AccessTokenEncrypted:   encToken,
		WebhookSecretEncrypted: encSecret,
		WebhookURL:             hookURL,
	}
	if err := h.Store.SetGitHubAuth(ctx, state.UserID, auth); err != nil {
		return err
	}

	return h.provisionWebhooks(ctx, state.UserID, token, hookURL, secret)
}

// provisionWebhooks installs the push hook on every reachable repository.
// Per-repository failures (no admin rights, hook already present) are
// logged and skipped; one bad repo must not sink the link.
func (h *Handler) provisionWebhooks(ctx context.Context, userID, token, hookURL, secret string) error {
	repos, err := h.GitHub.ListRepos(ctx, token)
	if err != nil {
		return fmt.Errorf("list repos: %w", err)
	}

	created := 0
	for _, repo := range repos {
		if err := h.GitHub.CreateHook(ctx, token, repo, hookURL, secret); err != nil {
			logger.Get().Warn("skipping webhook on repository",
				zap.String("user_id", userID),
				zap.String("repo", repo),
				zap.Error(err))
			continue
		}
		created++
	}

	logger.Get().Info("webhooks provisioned",
		zap.String("user_id", userID),
		zap.Int("repos", len(repos)),
		zap.Int("created", created))
	return nil
}

func (h *Handler) completeXLink(ctx context.Context, state *models.OAuthState, code, callback string) error {
	token, err := h.X.Exchange(ctx, code, callback, state.CodeVerifier)
	if err != nil {
		return err
	}
	profile, err := h.X.Profile(ctx, token)
	if err != nil {
		return fmt.Errorf("x profile: %w", err)
	}

	encToken, err := h.Cipher.Encrypt(token)
	if err != nil {
		return fmt.Errorf("encrypt x token: %w", err)
	}

	return h.Store.SetXAuth(ctx, state.UserID, &models.XAuth{
		ID:                   profile.ID,
		Username:             profile.Username,
		AccessTokenEncrypted: encToken,
	})
}

// callbackURL rebuilds this server's own callback endpoint from the
// incoming request, honoring proxy forwarding headers.
func (h *Handler) callbackURL(c *gin.Context, provider string) string {
	return h.requestOrigin(c) + "/oauth/" + provider + "/callback"
}

func (h *Handler) requestOrigin(c *gin.Context) string {
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
		if c.Request.TLS != nil {
			proto = "https"
		}
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return proto + "://" + host
}

func diagnosticPage(provider string, query url.Values) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>連携エラー</title></head>
<body>
<h1>%s 連携を完了できませんでした</h1>
<p>認可コードまたは state がコールバックに含まれていません。アプリから連携をやり直してください。</p>
<pre>%s</pre>
</body>
</html>`, provider, query.Encode())
}
