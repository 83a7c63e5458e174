package oauth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestXAuthorizeURLCarriesPKCE(t *testing.T) {
	x := &XProvider{ClientID: "x-client"}
	raw := x.AuthorizeURL("https://app.example.com/oauth/x/callback", "state-1", "challenge-1")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse authorize url: %v", err)
	}
	q := u.Query()
	if q.Get("code_challenge") != "challenge-1" {
		t.Errorf("code_challenge = %s", q.Get("code_challenge"))
	}
	if q.Get("code_challenge_method") != "S256" {
		t.Errorf("code_challenge_method = %s, want S256", q.Get("code_challenge_method"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %s", q.Get("response_type"))
	}
}

func TestXExchangeUsesBasicAuthAndVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/oauth2/token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		auth := r.Header.Get("Authorization")
		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("x-id:x-secret"))
		if auth != wantAuth {
			t.Errorf("authorization = %s, want %s", auth, wantAuth)
		}

		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("code_verifier"); got != "the-verifier" {
			t.Errorf("code_verifier = %s", got)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %s", got)
		}
		fmt.Fprint(w, `{"access_token":"x_token","token_type":"bearer","expires_in":7200}`)
	}))
	defer srv.Close()

	x := &XProvider{ClientID: "x-id", ClientSecret: "x-secret", APIBaseURL: srv.URL, HTTP: srv.Client()}
	token, err := x.Exchange(context.Background(), "code-1", "https://cb", "the-verifier")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if token != "x_token" {
		t.Errorf("token = %s", token)
	}
}

func TestXProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/users/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Errorf("missing bearer auth")
		}
		fmt.Fprint(w, `{"data":{"id":"42","username":"studyorpost"}}`)
	}))
	defer srv.Close()

	x := &XProvider{APIBaseURL: srv.URL, HTTP: srv.Client()}
	profile, err := x.Profile(context.Background(), "x_token")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.ID != "42" || profile.Username != "studyorpost" {
		t.Errorf("profile = %+v", profile)
	}
}
