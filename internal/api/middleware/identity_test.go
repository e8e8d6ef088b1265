package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIdentityExtractsForwardedHeaders(t *testing.T) {
	var got UserContext
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	req.Header.Set("X-Forwarded-Email", "jan.botha@angloamerican.com")
	req.Header.Set("X-Forwarded-Access-Token", "user-token-123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got.Email != "jan.botha@angloamerican.com" {
		t.Errorf("email = %q", got.Email)
	}
	if got.AccessToken != "user-token-123" {
		t.Errorf("access token = %q", got.AccessToken)
	}
	if got.DisplayName != "Jan Botha" {
		t.Errorf("display name = %q, want Jan Botha", got.DisplayName)
	}
	if !got.IsAuthenticated() {
		t.Error("IsAuthenticated = false with email present")
	}
	if got.UserID() != "jan_botha_at_angloamerican_com" {
		t.Errorf("user id = %q", got.UserID())
	}
}

func TestIdentityAnonymous(t *testing.T) {
	var got UserContext
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got.IsAuthenticated() {
		t.Error("anonymous request reported authenticated")
	}
	if got.DisplayName != "" {
		t.Errorf("display name = %q, want empty", got.DisplayName)
	}
	if got.UserID() != "anonymous" {
		t.Errorf("user id = %q, want anonymous", got.UserID())
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		email, want string
	}{
		{"maria@example.com", "Maria"},
		{"pieter.van.der.merwe@example.com", "Pieter Van Der Merwe"},
		{"OPS.TEAM@example.com", "Ops Team"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := displayName(tt.email); got != tt.want {
			t.Errorf("displayName(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
