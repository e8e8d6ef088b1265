package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/config"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

// PostgresStore persists conversations and messages in Postgres.
// Configuration entities stay in the in-process cache, same as the
// memory backend; only chat history is durable here. LakebaseStore
// reuses this implementation over a token-authenticated pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	cache  *configCache
	source EndpointSource
}

var _ Store = (*PostgresStore)(nil)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	endpoint_id TEXT NOT NULL,
	domain_id TEXT,
	site_id TEXT,
	user_email TEXT,
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_user_email ON conversations(user_email);
CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id);
`

func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig, source EndpointSource) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	s, err := initPostgresStore(ctx, pool, source)
	if err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("postgres store ready")
	return s, nil
}

// initPostgresStore finishes setup over an already-built pool: ping,
// schema, cache seed. Shared with the Lakebase constructor.
func initPostgresStore(ctx context.Context, pool *pgxpool.Pool, source EndpointSource) (*PostgresStore, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	s := &PostgresStore{pool: pool, cache: newConfigCache(), source: source}
	s.cache.seedDefaults()
	return s, nil
}

func (s *PostgresStore) RefreshEndpointsFromRemote(ctx context.Context) ([]models.Endpoint, error) {
	endpoints, _ := refreshEndpoints(ctx, s.source, s.cache)
	return endpoints, nil
}

// ── Conversations ────────────────────────────────────────────

const conversationCols = `id, title, endpoint_id, COALESCE(domain_id, ''), COALESCE(site_id, ''), COALESCE(user_email, ''), created_at, updated_at`

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(&c.ID, &c.Title, &c.EndpointID, &c.DomainID, &c.SiteID, &c.UserEmail, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Messages = []models.Message{}
	return &c, nil
}

func (s *PostgresStore) GetConversations(ctx context.Context, userEmail string) ([]models.Conversation, error) {
	query := `SELECT ` + conversationCols + ` FROM conversations ORDER BY updated_at DESC`
	args := []any{}
	if userEmail != "" {
		query = `SELECT ` + conversationCols + ` FROM conversations WHERE user_email = $1 ORDER BY updated_at DESC`
		args = append(args, userEmail)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Conversation)
	order := []string{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		byID[c.ID] = c
		order = append(order, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if err := s.attachMessages(ctx, byID, order); err != nil {
		return nil, err
	}
	out := make([]models.Conversation, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// attachMessages loads the message history for every listed
// conversation in one query, oldest first.
func (s *PostgresStore) attachMessages(ctx context.Context, byID map[string]*models.Conversation, order []string) error {
	if len(order) == 0 {
		return nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, timestamp FROM messages WHERE conversation_id = ANY($1) ORDER BY timestamp ASC`,
		order)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m models.Message
		var convID string
		if err := rows.Scan(&m.ID, &convID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		if c, ok := byID[convID]; ok {
			c.Messages = append(c.Messages, m)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	c, err := scanConversation(s.pool.QueryRow(ctx,
		`SELECT `+conversationCols+` FROM conversations WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, &ErrNotFound{Entity: "conversation", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}
	if err := s.attachMessages(ctx, map[string]*models.Conversation{c.ID: c}, []string{c.ID}); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, endpointID, title, domainID, siteID, userEmail string) (*models.Conversation, error) {
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
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, title, endpoint_id, domain_id, site_id, user_email, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)`,
		c.ID, c.Title, c.EndpointID, c.DomainID, c.SiteID, c.UserEmail, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) AddMessage(ctx context.Context, conversationID string, msg models.InsertMessage) (*models.Message, error) {
	now := nowMillis()
	ts := msg.Timestamp
	if ts == 0 {
		ts = now
	}
	// The touch and the insert must land together or not at all, so a
	// failed insert cannot leave a conversation bumped with no message.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin add message: %w", err)
	}
	defer tx.Rollback(ctx)
	tag, err := tx.Exec(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE id = $2`, now, conversationID)
	if err != nil {
		return nil, fmt.Errorf("touch conversation %s: %w", conversationID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &ErrNotFound{Entity: "conversation", Key: conversationID}
	}
	m := &models.Message{
		ID:        uuid.NewString(),
		Role:      msg.Role,
		Content:   msg.Content,
		Timestamp: ts,
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, timestamp) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, conversationID, string(m.Role), m.Content, m.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit add message: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) UpdateConversation(ctx context.Context, id string, upd models.ConversationUpdate) (*models.Conversation, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations SET
			title = COALESCE($1, title),
			endpoint_id = COALESCE($2, endpoint_id),
			domain_id = COALESCE($3, domain_id),
			site_id = COALESCE($4, site_id),
			updated_at = $5
		 WHERE id = $6`,
		upd.Title, upd.EndpointID, upd.DomainID, upd.SiteID, nowMillis(), id)
	if err != nil {
		return nil, fmt.Errorf("update conversation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &ErrNotFound{Entity: "conversation", Key: id}
	}
	return s.GetConversation(ctx, id)
}

func (s *PostgresStore) DeleteConversation(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ── Configuration entities (cache-backed) ────────────────────

func (s *PostgresStore) GetDomains(ctx context.Context) ([]models.Domain, error) {
	return s.cache.listDomains(), nil
}

func (s *PostgresStore) GetDomain(ctx context.Context, id string) (*models.Domain, error) {
	d, ok := s.cache.getDomain(id)
	if !ok {
		return nil, &ErrNotFound{Entity: "domain", Key: id}
	}
	return &d, nil
}

func (s *PostgresStore) CreateDomain(ctx context.Context, in models.InsertDomain) (*models.Domain, error) {
	d := s.cache.createDomain(in)
	return &d, nil
}

func (s *PostgresStore) UpdateDomain(ctx context.Context, id string, upd models.DomainUpdate) (*models.Domain, error) {
	d, ok := s.cache.updateDomain(id, upd)
	if !ok {
		return nil, &ErrNotFound{Entity: "domain", Key: id}
	}
	return &d, nil
}

func (s *PostgresStore) DeleteDomain(ctx context.Context, id string) (bool, error) {
	return s.cache.deleteDomain(id), nil
}

func (s *PostgresStore) GetSites(ctx context.Context) ([]models.Site, error) {
	return s.cache.listSites(), nil
}

func (s *PostgresStore) GetSite(ctx context.Context, id string) (*models.Site, error) {
	site, ok := s.cache.getSite(id)
	if !ok {
		return nil, &ErrNotFound{Entity: "site", Key: id}
	}
	return &site, nil
}

func (s *PostgresStore) GetEndpoints(ctx context.Context, domainID string) ([]models.Endpoint, error) {
	return s.cache.listEndpoints(domainID), nil
}

func (s *PostgresStore) GetEndpoint(ctx context.Context, id string) (*models.Endpoint, error) {
	e, ok := s.cache.getEndpoint(id)
	if !ok {
		return nil, &ErrNotFound{Entity: "endpoint", Key: id}
	}
	return &e, nil
}

func (s *PostgresStore) CreateEndpoint(ctx context.Context, in models.InsertEndpoint) (*models.Endpoint, error) {
	e := s.cache.createEndpoint(in)
	return &e, nil
}

func (s *PostgresStore) UpdateEndpoint(ctx context.Context, id string, upd models.EndpointUpdate) (*models.Endpoint, error) {
	e, ok := s.cache.updateEndpoint(id, upd)
	if !ok {
		return nil, &ErrNotFound{Entity: "endpoint", Key: id}
	}
	return &e, nil
}

func (s *PostgresStore) DeleteEndpoint(ctx context.Context, id string) (bool, error) {
	return s.cache.deleteEndpoint(id), nil
}

func (s *PostgresStore) GetConfig(ctx context.Context) (models.Config, error) {
	return s.cache.getConfig(), nil
}

func (s *PostgresStore) SetConfig(ctx context.Context, cfg models.Config) (models.Config, error) {
	return s.cache.setConfig(cfg), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
