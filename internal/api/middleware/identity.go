package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userContextKey contextKey = "user_context"

// UserContext is the per-request identity extracted from the reverse
// proxy's forwarded headers. Header authenticity is not validated
// here: authentication is enforced upstream, these headers are only
// trusted inside the deployment boundary.
type UserContext struct {
	Email       string
	AccessToken string
	DisplayName string
}

// IsAuthenticated reports whether the proxy forwarded an identity.
func (u UserContext) IsAuthenticated() bool {
	return u.Email != ""
}

// UserID is a filesystem/key-safe form of the email, used where an
// identifier without @ and . is needed.
func (u UserContext) UserID() string {
	if u.Email == "" {
		return "anonymous"
	}
	id := strings.ToLower(u.Email)
	id = strings.ReplaceAll(id, "@", "_at_")
	return strings.ReplaceAll(id, ".", "_")
}

// Identity extracts the forwarded user identity into the request
// context. Anonymous requests pass through with an empty context.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uc := UserContext{
			Email:       r.Header.Get("X-Forwarded-Email"),
			AccessToken: r.Header.Get("X-Forwarded-Access-Token"),
		}
		uc.DisplayName = displayName(uc.Email)
		ctx := context.WithValue(r.Context(), userContextKey, uc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserContext retrieves the forwarded identity from the request
// context. Returns the zero value for anonymous requests.
func GetUserContext(ctx context.Context) UserContext {
	if v, ok := ctx.Value(userContextKey).(UserContext); ok {
		return v
	}
	return UserContext{}
}

// displayName turns "jan.botha@example.com" into "Jan Botha": the
// local part split on dots, each word title-cased.
func displayName(email string) string {
	if email == "" {
		return ""
	}
	local := email
	if i := strings.Index(email, "@"); i >= 0 {
		local = email[:i]
	}
	words := strings.Split(local, ".")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
