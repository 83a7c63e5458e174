package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jime0083/BatsuGaku/apperr"
)

func TestGitHubAuthorizeURL(t *testing.T) {
	g := &GitHubProvider{ClientID: "client-123"}
	raw := g.AuthorizeURL("https://app.example.com/oauth/github/callback", "state-abc")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse authorize url: %v", err)
	}
	if u.Host != "github.com" || u.Path != "/login/oauth/authorize" {
		t.Errorf("unexpected endpoint: %s", raw)
	}
	q := u.Query()
	if q.Get("client_id") != "client-123" {
		t.Errorf("client_id = %s", q.Get("client_id"))
	}
	if q.Get("state") != "state-abc" {
		t.Errorf("state = %s", q.Get("state"))
	}
	if q.Get("redirect_uri") != "https://app.example.com/oauth/github/callback" {
		t.Errorf("redirect_uri = %s", q.Get("redirect_uri"))
	}
}

func TestGitHubExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/oauth/access_token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s, want application/json", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["client_id"] != "id" || body["client_secret"] != "secret" || body["code"] != "the-code" {
			t.Errorf("unexpected exchange body: %v", body)
		}
		fmt.Fprint(w, `{"access_token":"gho_token","token_type":"bearer"}`)
	}))
	defer srv.Close()

	g := &GitHubProvider{ClientID: "id", ClientSecret: "secret", AuthBaseURL: srv.URL, HTTP: srv.Client()}
	token, err := g.Exchange(context.Background(), "the-code", "https://cb")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if token != "gho_token" {
		t.Errorf("token = %s", token)
	}
}

func TestGitHubExchangeNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"bad_verification_code","error_description":"The code is incorrect."}`)
	}))
	defer srv.Close()

	g := &GitHubProvider{ClientID: "id", ClientSecret: "secret", AuthBaseURL: srv.URL, HTTP: srv.Client()}
	if _, err := g.Exchange(context.Background(), "bad", "https://cb"); !errors.Is(err, apperr.ErrTokenExchange) {
		t.Errorf("expected ErrTokenExchange, got %v", err)
	}
}

func TestGitHubListReposPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if per := r.URL.Query().Get("per_page"); per != "100" {
			t.Errorf("per_page = %s, want 100", per)
		}

		var repos []githubRepo
		switch page {
		case "1":
			for i := 0; i < repoPageSize; i++ {
				repos = append(repos, githubRepo{FullName: fmt.Sprintf("octocat/repo-%d", i)})
			}
		case "2":
			repos = []githubRepo{{FullName: "octocat/last"}}
		default:
			t.Errorf("unexpected page %s requested", page)
		}
		json.NewEncoder(w).Encode(repos)
	}))
	defer srv.Close()

	g := &GitHubProvider{APIBaseURL: srv.URL, HTTP: srv.Client()}
	repos, err := g.ListRepos(context.Background(), "token")
	if err != nil {
		t.Fatalf("ListRepos: %v", err)
	}
	if len(repos) != repoPageSize+1 {
		t.Errorf("got %d repos, want %d", len(repos), repoPageSize+1)
	}
	if repos[len(repos)-1] != "octocat/last" {
		t.Errorf("last repo = %s", repos[len(repos)-1])
	}
}

func TestGitHubCreateHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/repos/octocat/hello/hooks") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Events []string `json:"events"`
			Config struct {
				URL    string `json:"url"`
				Secret string `json:"secret"`
			} `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode hook request: %v", err)
		}
		if len(body.Events) != 1 || body.Events[0] != "push" {
			t.Errorf("events = %v, want [push]", body.Events)
		}
		if body.Config.Secret != "hook-secret" {
			t.Errorf("secret = %s", body.Config.Secret)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	g := &GitHubProvider{APIBaseURL: srv.URL, HTTP: srv.Client()}
	err := g.CreateHook(context.Background(), "token", "octocat/hello", "https://app/webhook?uid=u1", "hook-secret")
	if err != nil {
		t.Fatalf("CreateHook: %v", err)
	}
}
