package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/api"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/api/handlers"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/remote"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/store"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

type fakeRemote struct {
	configured bool
	reply      string
	err        error

	gotEndpoint string
	gotMessages []remote.ChatMessage
	gotToken    string
}

func (f *fakeRemote) Configured() bool { return f.configured }

func (f *fakeRemote) Invoke(ctx context.Context, endpointName string, messages []remote.ChatMessage, userToken string) (string, error) {
	f.gotEndpoint = endpointName
	f.gotMessages = messages
	f.gotToken = userToken
	return f.reply, f.err
}

func newTestServer(t *testing.T, rc handlers.RemoteClient) (http.Handler, store.Store) {
	t.Helper()
	s := store.NewMemoryStore(nil)
	h := handlers.New(s, rc, "test")
	return api.NewRouter(h), s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChatCreatesConversationWithMockFallback(t *testing.T) {
	router, s := newTestServer(t, nil)

	msg := strings.Repeat("What is the crusher throughput today and how does it compare", 2)
	rec := doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{
		Message:    msg,
		EndpointID: "databricks-dbrx-instruct",
		DomainID:   "mining-ops",
		SiteID:     "sishen",
	}, map[string]string{"X-Forwarded-Email": "jan.botha@example.com"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatal("no conversation id returned")
	}
	if resp.Message.Role != models.RoleAssistant {
		t.Errorf("role = %q, want assistant", resp.Message.Role)
	}
	if !strings.Contains(resp.Message.Content, "Mining Operations") {
		t.Errorf("mock reply not domain-specific: %q", resp.Message.Content)
	}
	if !strings.Contains(resp.Message.Content, "Sishen Mine") {
		t.Errorf("mock reply missing site focus: %q", resp.Message.Content)
	}

	conv, err := s.GetConversation(context.Background(), resp.ConversationID)
	if err != nil {
		t.Fatalf("stored conversation: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("stored messages = %d, want user+assistant", len(conv.Messages))
	}
	if conv.UserEmail != "jan.botha@example.com" {
		t.Errorf("owner = %q", conv.UserEmail)
	}
	if !strings.HasSuffix(conv.Title, "...") || len([]rune(conv.Title)) != 53 {
		t.Errorf("title not truncated to 50 runes: %q", conv.Title)
	}
}

func TestChatInvokesRemoteWithSystemPromptAndToken(t *testing.T) {
	rc := &fakeRemote{configured: true, reply: "Throughput is nominal."}
	router, _ := newTestServer(t, rc)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{
		Message:    "Status?",
		EndpointID: "databricks-dbrx-instruct",
		DomainID:   "mining-ops",
		SiteID:     "sishen",
	}, map[string]string{"X-Forwarded-Access-Token": "user-tok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rc.gotEndpoint != "dbrx-instruct" {
		t.Errorf("serving endpoint = %q, want dbrx-instruct (prefix stripped)", rc.gotEndpoint)
	}
	if rc.gotToken != "user-tok" {
		t.Errorf("user token = %q", rc.gotToken)
	}
	if len(rc.gotMessages) != 2 {
		t.Fatalf("messages = %d, want system+user", len(rc.gotMessages))
	}
	if rc.gotMessages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", rc.gotMessages[0].Role)
	}
	if !strings.Contains(rc.gotMessages[0].Content, "Sishen Mine") {
		t.Errorf("system prompt missing site focus: %q", rc.gotMessages[0].Content)
	}
	var resp models.ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message.Content != "Throughput is nominal." {
		t.Errorf("reply = %q", resp.Message.Content)
	}
}

func TestChatFallsBackWhenRemoteFails(t *testing.T) {
	rc := &fakeRemote{configured: true, err: remote.ErrUnavailable}
	router, _ := newTestServer(t, rc)

	rec := doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{
		Message:    "hello",
		EndpointID: "databricks-dbrx-instruct",
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, remote failure must not fail the turn", rec.Code)
	}
	var resp models.ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Message.Content == "" {
		t.Error("empty fallback reply")
	}
}

func TestChatContinuesExistingConversation(t *testing.T) {
	router, s := newTestServer(t, nil)

	conv, _ := s.CreateConversation(context.Background(), "databricks-dbrx-instruct", "t", "", "", "")
	s.AddMessage(context.Background(), conv.ID, models.InsertMessage{Role: models.RoleUser, Content: "earlier"})

	rec := doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{
		Message:        "and now?",
		ConversationID: conv.ID,
		EndpointID:     "databricks-dbrx-instruct",
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got, _ := s.GetConversation(context.Background(), conv.ID)
	if len(got.Messages) != 3 {
		t.Errorf("messages = %d, want 3", len(got.Messages))
	}
}

func TestChatUnknownConversationIs404(t *testing.T) {
	router, _ := newTestServer(t, nil)
	rec := doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{
		Message:        "hi",
		ConversationID: "nope",
		EndpointID:     "e",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestChatValidation(t *testing.T) {
	router, _ := newTestServer(t, nil)
	rec := doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{EndpointID: "e"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty message: status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{Message: "hi"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty endpoint: status = %d, want 400", rec.Code)
	}
}

func TestListEndpointsPromotesDefault(t *testing.T) {
	router, s := newTestServer(t, nil)

	// drop the seeded default so the handler has to promote one
	endpoints, _ := s.GetEndpoints(context.Background(), "")
	for _, e := range endpoints {
		if e.IsDefault {
			f := false
			s.UpdateEndpoint(context.Background(), e.ID, models.EndpointUpdate{IsDefault: &f})
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/endpoints", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []models.Endpoint
	json.Unmarshal(rec.Body.Bytes(), &got)
	var defaults int
	for _, e := range got {
		if e.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("defaults in response = %d, want exactly 1", defaults)
	}
}

func TestConversationListScopedToUser(t *testing.T) {
	router, s := newTestServer(t, nil)
	s.CreateConversation(context.Background(), "e", "mine", "", "", "a@example.com")
	s.CreateConversation(context.Background(), "e", "theirs", "", "", "b@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/conversations", nil,
		map[string]string{"X-Forwarded-Email": "a@example.com"})
	var got []models.Conversation
	json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got) != 1 || got[0].Title != "mine" {
		t.Errorf("scoped list = %+v, want only the caller's conversation", got)
	}
}

func TestDomainCRUDOverHTTP(t *testing.T) {
	router, _ := newTestServer(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/domains", models.InsertDomain{
		Name:         "Tailings Analysis",
		SystemPrompt: "You analyze tailings dams.",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var d models.Domain
	json.Unmarshal(rec.Body.Bytes(), &d)
	if d.ID != "tailings-analysis" {
		t.Errorf("id = %q", d.ID)
	}

	newName := "Tailings & Water"
	rec = doJSON(t, router, http.MethodPut, "/api/domains/"+d.ID, models.DomainUpdate{Name: &newName}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/domains/"+d.ID, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/domains/"+d.ID, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCreateDomainRequiresName(t *testing.T) {
	router, _ := newTestServer(t, nil)
	rec := doJSON(t, router, http.MethodPost, "/api/domains", models.InsertDomain{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	router, _ := newTestServer(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/config", models.Config{DefaultEndpointID: "databricks-dbrx-instruct"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/config", nil, nil)
	var cfg models.Config
	json.Unmarshal(rec.Body.Bytes(), &cfg)
	if cfg.DefaultEndpointID != "databricks-dbrx-instruct" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestHealthAndVersion(t *testing.T) {
	router, _ := newTestServer(t, nil)
	rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/version", nil, nil)
	var v map[string]string
	json.Unmarshal(rec.Body.Bytes(), &v)
	if v["version"] != "test" {
		t.Errorf("version = %q", v["version"])
	}
}

func TestDeleteConversationOverHTTP(t *testing.T) {
	router, s := newTestServer(t, nil)
	conv, _ := s.CreateConversation(context.Background(), "e", "t", "", "", "")

	rec := doJSON(t, router, http.MethodDelete, "/api/conversations/"+conv.ID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := s.GetConversation(context.Background(), conv.ID); err == nil {
		t.Error("conversation survived delete")
	}
	var nf *store.ErrNotFound
	_, err := s.GetConversation(context.Background(), conv.ID)
	if !errors.As(err, &nf) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/conversations/"+conv.ID, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}
