package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

// MemoryStore keeps everything in process memory. It is the terminal
// fallback of backend selection and the default for local
// development; nothing survives a restart.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	cache         *configCache
	source        EndpointSource
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(source EndpointSource) *MemoryStore {
	s := &MemoryStore{
		conversations: make(map[string]*models.Conversation),
		cache:         newConfigCache(),
		source:        source,
	}
	s.cache.seedDefaults()
	return s
}

func (s *MemoryStore) RefreshEndpointsFromRemote(ctx context.Context) ([]models.Endpoint, error) {
	endpoints, _ := refreshEndpoints(ctx, s.source, s.cache)
	return endpoints, nil
}

// ── Conversations ────────────────────────────────────────────

func (s *MemoryStore) GetConversations(ctx context.Context, userEmail string) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		if userEmail != "" && c.UserEmail != userEmail {
			continue
		}
		out = append(out, copyConversation(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out, nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "conversation", Key: id}
	}
	cp := copyConversation(c)
	return &cp, nil
}

func (s *MemoryStore) CreateConversation(ctx context.Context, endpointID, title, domainID, siteID, userEmail string) (*models.Conversation, error) {
	now := nowMillis()
	c := &models.Conversation{
		ID:         uuid.NewString(),
		Title:      title,
		Messages:   []models.Message{},
		EndpointID: endpointID,
		DomainID:   domainID,
		SiteID:     siteID,
		UserEmail:  userEmail,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.mu.Lock()
	s.conversations[c.ID] = c
	s.mu.Unlock()
	cp := copyConversation(c)
	return &cp, nil
}

func (s *MemoryStore) AddMessage(ctx context.Context, conversationID string, msg models.InsertMessage) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[conversationID]
	if !ok {
		return nil, &ErrNotFound{Entity: "conversation", Key: conversationID}
	}
	ts := msg.Timestamp
	if ts == 0 {
		ts = nowMillis()
	}
	m := models.Message{
		ID:        uuid.NewString(),
		Role:      msg.Role,
		Content:   msg.Content,
		Timestamp: ts,
	}
	// Keep messages ordered by timestamp, matching the SQL backends'
	// ORDER BY timestamp ASC even when callers backfill older entries.
	i := sort.Search(len(c.Messages), func(i int) bool {
		return c.Messages[i].Timestamp > ts
	})
	c.Messages = append(c.Messages, models.Message{})
	copy(c.Messages[i+1:], c.Messages[i:])
	c.Messages[i] = m
	c.UpdatedAt = nowMillis()
	return &m, nil
}

func (s *MemoryStore) UpdateConversation(ctx context.Context, id string, upd models.ConversationUpdate) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "conversation", Key: id}
	}
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.EndpointID != nil {
		c.EndpointID = *upd.EndpointID
	}
	if upd.DomainID != nil {
		c.DomainID = *upd.DomainID
	}
	if upd.SiteID != nil {
		c.SiteID = *upd.SiteID
	}
	c.UpdatedAt = nowMillis()
	cp := copyConversation(c)
	return &cp, nil
}

func (s *MemoryStore) DeleteConversation(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[id]
	delete(s.conversations, id)
	return ok, nil
}

// ── Domains ──────────────────────────────────────────────────

func (s *MemoryStore) GetDomains(ctx context.Context) ([]models.Domain, error) {
	return s.cache.listDomains(), nil
}

func (s *MemoryStore) GetDomain(ctx context.Context, id string) (*models.Domain, error) {
	d, ok := s.cache.getDomain(id)
	if !ok {
		return nil, &ErrNotFound{Entity: "domain", Key: id}
	}
	return &d, nil
}

func (s *MemoryStore) CreateDomain(ctx context.Context, in models.InsertDomain) (*models.Domain, error) {
	d := s.cache.createDomain(in)
	return &d, nil
}

func (s *MemoryStore) UpdateDomain(ctx context.Context, id string, upd models.DomainUpdate) (*models.Domain, error) {
	d, ok := s.cache.updateDomain(id, upd)
	if !ok {
		return nil, &ErrNotFound{Entity: "domain", Key: id}
	}
	return &d, nil
}

func (s *MemoryStore) DeleteDomain(ctx context.Context, id string) (bool, error) {
	return s.cache.deleteDomain(id), nil
}

// ── Sites ────────────────────────────────────────────────────

func (s *MemoryStore) GetSites(ctx context.Context) ([]models.Site, error) {
	return s.cache.listSites(), nil
}

func (s *MemoryStore) GetSite(ctx context.Context, id string) (*models.Site, error) {
	site, ok := s.cache.getSite(id)
	if !ok {
		return nil, &ErrNotFound{Entity: "site", Key: id}
	}
	return &site, nil
}

// ── Endpoints ────────────────────────────────────────────────

func (s *MemoryStore) GetEndpoints(ctx context.Context, domainID string) ([]models.Endpoint, error) {
	return s.cache.listEndpoints(domainID), nil
}

func (s *MemoryStore) GetEndpoint(ctx context.Context, id string) (*models.Endpoint, error) {
	e, ok := s.cache.getEndpoint(id)
	if !ok {
		return nil, &ErrNotFound{Entity: "endpoint", Key: id}
	}
	return &e, nil
}

func (s *MemoryStore) CreateEndpoint(ctx context.Context, in models.InsertEndpoint) (*models.Endpoint, error) {
	e := s.cache.createEndpoint(in)
	return &e, nil
}

func (s *MemoryStore) UpdateEndpoint(ctx context.Context, id string, upd models.EndpointUpdate) (*models.Endpoint, error) {
	e, ok := s.cache.updateEndpoint(id, upd)
	if !ok {
		return nil, &ErrNotFound{Entity: "endpoint", Key: id}
	}
	return &e, nil
}

func (s *MemoryStore) DeleteEndpoint(ctx context.Context, id string) (bool, error) {
	return s.cache.deleteEndpoint(id), nil
}

// ── Config ───────────────────────────────────────────────────

func (s *MemoryStore) GetConfig(ctx context.Context) (models.Config, error) {
	return s.cache.getConfig(), nil
}

func (s *MemoryStore) SetConfig(ctx context.Context, cfg models.Config) (models.Config, error) {
	return s.cache.setConfig(cfg), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// copyConversation returns a value copy with its own message slice,
// so callers cannot mutate stored state through the result.
func copyConversation(c *models.Conversation) models.Conversation {
	cp := *c
	cp.Messages = make([]models.Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return cp
}
