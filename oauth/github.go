package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jime0083/BatsuGaku/apperr"
)

const repoPageSize = 100

// GitHubProvider handles the GitHub half of account linking: the OAuth
// exchange, the profile fetch, and push-webhook provisioning across the
// user's repositories.
type GitHubProvider struct {
	ClientID     string
	ClientSecret string

	// Overridable for tests.
	AuthBaseURL string // default https://github.com
	APIBaseURL  string // default https://api.github.com
	HTTP        *http.Client
}

func (g *GitHubProvider) authBase() string {
	if g.AuthBaseURL != "" {
		return g.AuthBaseURL
	}
	return "https://github.com"
}

func (g *GitHubProvider) apiBase() string {
	if g.APIBaseURL != "" {
		return g.APIBaseURL
	}
	return "https://api.github.com"
}

func (g *GitHubProvider) httpClient() *http.Client {
	if g.HTTP != nil {
		return g.HTTP
	}
	return newHTTPClient()
}

// AuthorizeURL builds the GitHub authorization URL.
func (g *GitHubProvider) AuthorizeURL(callbackURL, state string) string {
	params := url.Values{}
	params.Add("client_id", g.ClientID)
	params.Add("redirect_uri", callbackURL)
	params.Add("scope", "repo admin:repo_hook")
	params.Add("state", state)

	return g.authBase() + "/login/oauth/authorize?" + params.Encode()
}

type githubTokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Exchange trades an authorization code for an access token. GitHub takes
// a JSON body with client id and secret.
func (g *GitHubProvider) Exchange(ctx context.Context, code, callbackURL string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     g.ClientID,
		"client_secret": g.ClientSecret,
		"code":          code,
		"redirect_uri":  callbackURL,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.authBase()+"/login/oauth/access_token", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %v", apperr.ErrTokenExchange, statusError("github token exchange", resp))
	}

	var tokenResp githubTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", apperr.ErrTokenExchange, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token in response (%s: %s)", apperr.ErrTokenExchange, tokenResp.Error, tokenResp.ErrorDescription)
	}
	return tokenResp.AccessToken, nil
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Profile fetches the authenticated user.
func (g *GitHubProvider) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBase()+"/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("github profile", resp)
	}

	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &Profile{ID: strconv.FormatInt(user.ID, 10), Username: user.Login}, nil
}

type githubRepo struct {
	FullName string `json:"full_name"`
}

// ListRepos enumerates every repository accessible to the token, paginated
// at 100 per page until a short page comes back.
func (g *GitHubProvider) ListRepos(ctx context.Context, accessToken string) ([]string, error) {
	var repos []string
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/user/repos?per_page=%d&page=%d", g.apiBase(), repoPageSize, page)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := g.httpClient().Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			err := statusError("github list repos", resp)
			resp.Body.Close()
			return nil, err
		}

		var pageRepos []githubRepo
		err = json.NewDecoder(resp.Body).Decode(&pageRepos)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, r := range pageRepos {
			repos = append(repos, r.FullName)
		}
		if len(pageRepos) < repoPageSize {
			return repos, nil
		}
	}
}

// CreateHook registers a push webhook on one repository. Callers tolerate
// failures per repository (permission denied, hook already exists).
func (g *GitHubProvider) CreateHook(ctx context.Context, accessToken, repoFullName, hookURL, secret string) error {
	payload, err := json.Marshal(map[string]any{
		"name":   "web",
		"active": true,
		"events": []string{"push"},
		"config": map[string]string{
			"url":          hookURL,
			"content_type": "json",
			"secret":       secret,
		},
	})
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/repos/%s/hooks", g.apiBase(), repoFullName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return statusError(fmt.Sprintf("github create hook on %s", repoFullName), resp)
	}
	return nil
}
