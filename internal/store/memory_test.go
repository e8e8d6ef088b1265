package store

import (
	"context"
	"errors"
	"testing"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

type fakeSource struct {
	configured bool
	endpoints  []models.Endpoint
	err        error
	calls      int
}

func (f *fakeSource) Configured() bool { return f.configured }

func (f *fakeSource) ListServingEndpoints(ctx context.Context, userToken string) ([]models.Endpoint, error) {
	f.calls++
	return f.endpoints, f.err
}

func TestMemoryStoreSeedsDefaults(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	domains, err := s.GetDomains(ctx)
	if err != nil {
		t.Fatalf("GetDomains: %v", err)
	}
	if len(domains) != 7 {
		t.Errorf("domains = %d, want 7", len(domains))
	}
	sites, err := s.GetSites(ctx)
	if err != nil {
		t.Fatalf("GetSites: %v", err)
	}
	if len(sites) != 12 {
		t.Errorf("sites = %d, want 12", len(sites))
	}
	endpoints, err := s.GetEndpoints(ctx, "")
	if err != nil {
		t.Fatalf("GetEndpoints: %v", err)
	}
	if len(endpoints) != 3 {
		t.Errorf("endpoints = %d, want 3", len(endpoints))
	}

	var defaults int
	for _, e := range endpoints {
		if e.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("default endpoints = %d, want 1", defaults)
	}
}

func TestConversationLifecycle(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	conv, err := s.CreateConversation(ctx, "databricks-dbrx-instruct", "Shift report", "mining-ops", "sishen", "jan.botha@example.com")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("conversation id is empty")
	}
	if conv.CreatedAt == 0 || conv.UpdatedAt == 0 {
		t.Error("timestamps not set")
	}
	if len(conv.Messages) != 0 {
		t.Errorf("new conversation has %d messages, want 0", len(conv.Messages))
	}

	msg, err := s.AddMessage(ctx, conv.ID, models.InsertMessage{Role: models.RoleUser, Content: "How is crusher 2 performing?"})
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if msg.ID == "" || msg.Timestamp == 0 {
		t.Error("message id or timestamp not assigned")
	}

	got, err := s.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(got.Messages))
	}
	if got.UpdatedAt < conv.UpdatedAt {
		t.Error("UpdatedAt went backwards after AddMessage")
	}

	newTitle := "Crusher performance"
	upd, err := s.UpdateConversation(ctx, conv.ID, models.ConversationUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("UpdateConversation: %v", err)
	}
	if upd.Title != newTitle {
		t.Errorf("title = %q, want %q", upd.Title, newTitle)
	}
	if upd.EndpointID != "databricks-dbrx-instruct" {
		t.Errorf("endpoint changed unexpectedly: %q", upd.EndpointID)
	}

	deleted, err := s.DeleteConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if !deleted {
		t.Error("delete reported false for existing conversation")
	}
	if _, err := s.GetConversation(ctx, conv.ID); err == nil {
		t.Error("conversation still readable after delete")
	}

	deleted, err = s.DeleteConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("DeleteConversation (second): %v", err)
	}
	if deleted {
		t.Error("second delete reported true")
	}
}

func TestConversationsFilteredByOwnerNewestFirst(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	a, _ := s.CreateConversation(ctx, "e1", "first", "", "", "a@example.com")
	b, _ := s.CreateConversation(ctx, "e1", "second", "", "", "a@example.com")
	s.CreateConversation(ctx, "e1", "other", "", "", "b@example.com")

	// bump a so it is the most recently updated
	if _, err := s.AddMessage(ctx, a.ID, models.InsertMessage{Role: models.RoleUser, Content: "hi", Timestamp: nowMillis() + 10}); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	convs, err := s.GetConversations(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetConversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("conversations = %d, want 2", len(convs))
	}
	if convs[0].UpdatedAt < convs[1].UpdatedAt {
		t.Error("conversations not ordered newest first")
	}
	_ = b

	all, err := s.GetConversations(ctx, "")
	if err != nil {
		t.Fatalf("GetConversations(all): %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all conversations = %d, want 3", len(all))
	}
}

func TestMessagesSortedByTimestamp(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()
	conv, err := s.CreateConversation(ctx, "databricks-dbrx-instruct", "backfill", "generic", "all-sites", "geo@angloamerican.com")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	for _, m := range []models.InsertMessage{
		{Role: models.RoleUser, Content: "second", Timestamp: 2000},
		{Role: models.RoleAssistant, Content: "first", Timestamp: 1000},
		{Role: models.RoleUser, Content: "third", Timestamp: 3000},
	} {
		if _, err := s.AddMessage(ctx, conv.ID, m); err != nil {
			t.Fatalf("AddMessage: %v", err)
		}
	}

	got, err := s.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(got.Messages))
	}
	for i := 1; i < len(got.Messages); i++ {
		if got.Messages[i-1].Timestamp > got.Messages[i].Timestamp {
			t.Errorf("messages out of order: %d before %d",
				got.Messages[i-1].Timestamp, got.Messages[i].Timestamp)
		}
	}
	if got.Messages[0].Content != "first" || got.Messages[2].Content != "third" {
		t.Errorf("unexpected order: %q, %q, %q",
			got.Messages[0].Content, got.Messages[1].Content, got.Messages[2].Content)
	}
}

func TestAddMessageUnknownConversation(t *testing.T) {
	s := NewMemoryStore(nil)
	_, err := s.AddMessage(context.Background(), "missing", models.InsertMessage{Role: models.RoleUser, Content: "x"})
	var nf *ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if nf.Entity != "conversation" {
		t.Errorf("entity = %q, want conversation", nf.Entity)
	}
}

func TestGetConversationCopyIsolation(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	conv, _ := s.CreateConversation(ctx, "e1", "t", "", "", "")
	s.AddMessage(ctx, conv.ID, models.InsertMessage{Role: models.RoleUser, Content: "original"})

	got, _ := s.GetConversation(ctx, conv.ID)
	got.Messages[0].Content = "mutated"
	got.Title = "mutated"

	again, _ := s.GetConversation(ctx, conv.ID)
	if again.Messages[0].Content != "original" {
		t.Error("stored message mutated through a returned copy")
	}
	if again.Title != "t" {
		t.Error("stored title mutated through a returned copy")
	}
}

func TestDomainSlugCollision(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	d1, err := s.CreateDomain(ctx, models.InsertDomain{Name: "Tailings Analysis"})
	if err != nil {
		t.Fatalf("CreateDomain: %v", err)
	}
	if d1.ID != "tailings-analysis" {
		t.Errorf("slug = %q, want tailings-analysis", d1.ID)
	}
	d2, _ := s.CreateDomain(ctx, models.InsertDomain{Name: "Tailings Analysis"})
	if d2.ID != "tailings-analysis-1" {
		t.Errorf("collision slug = %q, want tailings-analysis-1", d2.ID)
	}
	d3, _ := s.CreateDomain(ctx, models.InsertDomain{Name: "Tailings Analysis!"})
	if d3.ID != "tailings-analysis-2" {
		t.Errorf("second collision slug = %q, want tailings-analysis-2", d3.ID)
	}
}

func TestEndpointDomainFilter(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	s.CreateEndpoint(ctx, models.InsertEndpoint{Name: "Ops Agent", Type: models.EndpointAgent, DomainID: "mining-ops"})
	s.CreateEndpoint(ctx, models.InsertEndpoint{Name: "Finance Model", Type: models.EndpointCustom, DomainID: "finance"})
	s.CreateEndpoint(ctx, models.InsertEndpoint{Name: "Unbound Custom", Type: models.EndpointCustom})

	generic, _ := s.GetEndpoints(ctx, "generic")
	for _, e := range generic {
		if e.DomainID != "" && e.Type != models.EndpointFoundation {
			t.Errorf("generic filter leaked domain-bound endpoint %q", e.Name)
		}
	}
	// 3 seeded foundation + unbound custom
	if len(generic) != 4 {
		t.Errorf("generic endpoints = %d, want 4", len(generic))
	}

	ops, _ := s.GetEndpoints(ctx, "mining-ops")
	names := map[string]bool{}
	for _, e := range ops {
		names[e.Name] = true
	}
	if !names["Ops Agent"] {
		t.Error("mining-ops filter missing its own agent")
	}
	if names["Finance Model"] {
		t.Error("mining-ops filter leaked another domain's endpoint")
	}
	if !names["Unbound Custom"] {
		t.Error("mining-ops filter missing unbound endpoint")
	}
}

func TestRefreshEndpointsReplacesSet(t *testing.T) {
	src := &fakeSource{
		configured: true,
		endpoints: []models.Endpoint{
			{ID: "live-llama", Name: "live-llama", Type: models.EndpointFoundation, IsDefault: true},
			{ID: "live-agent", Name: "live-agent", Type: models.EndpointAgent},
		},
	}
	s := NewMemoryStore(src)

	got, err := s.RefreshEndpointsFromRemote(context.Background())
	if err != nil {
		t.Fatalf("RefreshEndpointsFromRemote: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("endpoints = %d, want 2", len(got))
	}
	if _, err := s.GetEndpoint(context.Background(), "databricks-dbrx-instruct"); err == nil {
		t.Error("seeded endpoint survived a successful refresh")
	}
}

func TestRefreshEndpointsKeepsSetOnFailure(t *testing.T) {
	src := &fakeSource{configured: true, err: context.DeadlineExceeded}
	s := NewMemoryStore(src)

	got, err := s.RefreshEndpointsFromRemote(context.Background())
	if err != nil {
		t.Fatalf("refresh returned hard error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("endpoints = %d after failed refresh, want seeded 3", len(got))
	}

	src.err = nil
	src.endpoints = nil
	got, _ = s.RefreshEndpointsFromRemote(context.Background())
	if len(got) != 3 {
		t.Errorf("endpoints = %d after empty refresh, want seeded 3", len(got))
	}
}

func TestRefreshEndpointsUnconfiguredSkipsRemote(t *testing.T) {
	src := &fakeSource{configured: false}
	s := NewMemoryStore(src)

	if _, err := s.RefreshEndpointsFromRemote(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if src.calls != 0 {
		t.Errorf("remote called %d times despite not being configured", src.calls)
	}
}

func TestSetConfigReplacesWholesale(t *testing.T) {
	s := NewMemoryStore(nil)
	ctx := context.Background()

	first := models.Config{DefaultEndpointID: "e1", SystemPrompt: "be brief"}
	if _, err := s.SetConfig(ctx, first); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	second := models.Config{DefaultDomainID: "finance"}
	if _, err := s.SetConfig(ctx, second); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	got, _ := s.GetConfig(ctx)
	if got.DefaultEndpointID != "" || got.SystemPrompt != "" {
		t.Error("SetConfig merged instead of replacing")
	}
	if got.DefaultDomainID != "finance" {
		t.Errorf("defaultDomainId = %q, want finance", got.DefaultDomainID)
	}
}
