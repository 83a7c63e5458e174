package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jime0083/BatsuGaku/apperr"
)

// XProvider handles the X (Twitter) half of account linking. X requires
// PKCE; the exchange authenticates with HTTP Basic and a form body
// carrying the code verifier.
type XProvider struct {
	ClientID     string
	ClientSecret string

	// Overridable for tests.
	AuthBaseURL string // default https://x.com
	APIBaseURL  string // default https://api.x.com
	HTTP        *http.Client
}

func (x *XProvider) authBase() string {
	if x.AuthBaseURL != "" {
		return x.AuthBaseURL
	}
	return "https://x.com"
}

func (x *XProvider) apiBase() string {
	if x.APIBaseURL != "" {
		return x.APIBaseURL
	}
	return "https://api.x.com"
}

func (x *XProvider) httpClient() *http.Client {
	if x.HTTP != nil {
		return x.HTTP
	}
	return newHTTPClient()
}

// AuthorizeURL builds the X authorization URL with an S256 PKCE challenge.
func (x *XProvider) AuthorizeURL(callbackURL, state, codeChallenge string) string {
	params := url.Values{}
	params.Add("response_type", "code")
	params.Add("client_id", x.ClientID)
	params.Add("redirect_uri", callbackURL)
	params.Add("scope", "tweet.read tweet.write users.read offline.access")
	params.Add("state", state)
	params.Add("code_challenge", codeChallenge)
	params.Add("code_challenge_method", "S256")

	return x.authBase() + "/i/oauth2/authorize?" + params.Encode()
}

type xTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Exchange trades an authorization code plus the PKCE verifier for an
// access token.
func (x *XProvider) Exchange(ctx context.Context, code, callbackURL, codeVerifier string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", callbackURL)
	form.Set("code_verifier", codeVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.apiBase()+"/2/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(x.ClientID, x.ClientSecret)

	resp, err := x.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %v", apperr.ErrTokenExchange, statusError("x token exchange", resp))
	}

	var tokenResp xTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", apperr.ErrTokenExchange, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token in response", apperr.ErrTokenExchange)
	}
	return tokenResp.AccessToken, nil
}

type xMeResponse struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

// Profile fetches the authenticated user.
func (x *XProvider) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.apiBase()+"/2/users/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := x.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("x profile", resp)
	}

	var me xMeResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, err
	}
	if me.Data.ID == "" {
		return nil, fmt.Errorf("x profile: empty user in response")
	}
	return &Profile{ID: me.Data.ID, Username: me.Data.Username}, nil
}
