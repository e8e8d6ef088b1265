package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/config"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.RemoteConfig{Host: serverURL, Token: "test-token"})
}

func TestListServingEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2.0/serving-endpoints" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"endpoints":[
			{"name":"databricks-dbrx-instruct","state":{"ready":"READY"}},
			{"name":"maintenance-agent","state":{"ready":"NOT_READY"}},
			{"name":"ore-grade-model","state":{"ready":"READY"}}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	endpoints, err := client.ListServingEndpoints(context.Background(), "")
	if err != nil {
		t.Fatalf("ListServingEndpoints() error = %v", err)
	}
	if len(endpoints) != 3 {
		t.Fatalf("got %d endpoints, want 3", len(endpoints))
	}

	if !endpoints[0].IsDefault {
		t.Error("first endpoint should be marked default")
	}
	if endpoints[1].IsDefault || endpoints[2].IsDefault {
		t.Error("only the first endpoint should be default")
	}

	if endpoints[0].Type != models.EndpointFoundation {
		t.Errorf("endpoints[0].Type = %q, want foundation", endpoints[0].Type)
	}
	if endpoints[1].Type != models.EndpointAgent {
		t.Errorf("endpoints[1].Type = %q, want agent", endpoints[1].Type)
	}
	if endpoints[2].Type != models.EndpointCustom {
		t.Errorf("endpoints[2].Type = %q, want custom", endpoints[2].Type)
	}

	if endpoints[1].Description != "AI Agent: maintenance-agent (not ready)" {
		t.Errorf("unexpected description: %q", endpoints[1].Description)
	}
}

func TestListServingEndpointsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ListServingEndpoints(context.Background(), "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestListAgentsFiltersToAgentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"endpoints":[
			{"name":"databricks-llama-3-70b","state":{"ready":"READY"}},
			{"name":"pit-dispatch-agent","state":{"ready":"READY"}}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	agents, err := client.ListAgents(context.Background(), "")
	if err != nil {
		t.Fatalf("ListAgents() error = %v", err)
	}
	if len(agents) != 1 {
		t.Fatalf("got %d agents, want 1", len(agents))
	}
	if agents[0].ID != "pit-dispatch-agent" {
		t.Errorf("agents[0].ID = %q", agents[0].ID)
	}
}

func TestServicePrincipalTokenExchange(t *testing.T) {
	var tokenCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/oidc/v1/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.Form.Get("grant_type"))
		}
		if r.Form.Get("scope") != "all-apis" {
			t.Errorf("scope = %q", r.Form.Get("scope"))
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "sp-client" || pass != "sp-secret" {
			t.Errorf("basic auth = %q/%q", user, pass)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"sp-access-token"}`)
	})
	mux.HandleFunc("/api/2.0/serving-endpoints", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sp-access-token" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"endpoints":[]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(config.RemoteConfig{
		Host:         server.URL,
		ClientID:     "sp-client",
		ClientSecret: "sp-secret",
	})

	ctx := context.Background()
	if _, err := client.ListServingEndpoints(ctx, ""); err != nil {
		t.Fatalf("first list error = %v", err)
	}
	if _, err := client.ListServingEndpoints(ctx, ""); err != nil {
		t.Fatalf("second list error = %v", err)
	}
	if tokenCalls != 1 {
		t.Errorf("token exchange called %d times, want 1 (cached)", tokenCalls)
	}
}

func TestUserTokenSkipsExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oidc/v1/token", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("token exchange must not run when a user token is supplied")
	})
	mux.HandleFunc("/api/2.0/serving-endpoints", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"endpoints":[]}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(config.RemoteConfig{
		Host:         server.URL,
		ClientID:     "sp-client",
		ClientSecret: "sp-secret",
	})
	if _, err := client.ListServingEndpoints(context.Background(), "user-token"); err != nil {
		t.Fatalf("ListServingEndpoints() error = %v", err)
	}
}

func TestInvokeChatCompletionShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/serving-endpoints/dbrx-instruct/invocations" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hello from the model"}}]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.Invoke(context.Background(), "dbrx-instruct", []ChatMessage{{Role: "user", Content: "hi"}}, "")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != "hello from the model" {
		t.Errorf("Invoke() = %q", got)
	}
}

func TestInvokePredictionsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"predictions":["legacy model output"]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.Invoke(context.Background(), "legacy-model", nil, "")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != "legacy model output" {
		t.Errorf("Invoke() = %q", got)
	}
}

func TestInvokePlaceholderWhenEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.Invoke(context.Background(), "silent-model", nil, "")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != placeholderResponse {
		t.Errorf("Invoke() = %q, want placeholder", got)
	}
}

func TestInvokeNon200IsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error_code":"PERMISSION_DENIED"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Invoke(context.Background(), "locked-model", nil, "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestNotConfigured(t *testing.T) {
	client := NewClient(config.RemoteConfig{})
	if client.Configured() {
		t.Error("empty client reports configured")
	}
	_, err := client.ListServingEndpoints(context.Background(), "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}
