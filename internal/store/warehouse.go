package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dbsql "github.com/databricks/databricks-sql-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/config"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

// WarehouseStore persists everything in a Databricks SQL warehouse.
// Unlike the Postgres backends, the configuration entities are
// durable here too: reads come from the in-process cache, writes go
// through to the warehouse tables, and the cache is hydrated from
// those tables at startup. All statements use the driver's named
// parameters; no values are ever spliced into SQL text.
type WarehouseStore struct {
	db     *sql.DB
	cache  *configCache
	source EndpointSource
}

var _ Store = (*WarehouseStore)(nil)

var warehouseDDL = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id STRING,
		title STRING,
		endpoint_id STRING,
		domain_id STRING,
		site_id STRING,
		user_email STRING,
		created_at BIGINT,
		updated_at BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id STRING,
		conversation_id STRING,
		role STRING,
		content STRING,
		timestamp BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS domains (
		id STRING,
		name STRING,
		description STRING,
		system_prompt STRING,
		icon STRING
	)`,
	`CREATE TABLE IF NOT EXISTS sites (
		id STRING,
		name STRING,
		location STRING,
		type STRING
	)`,
	`CREATE TABLE IF NOT EXISTS endpoints (
		id STRING,
		name STRING,
		description STRING,
		type STRING,
		is_default BOOLEAN,
		domain_id STRING
	)`,
	`CREATE TABLE IF NOT EXISTS user_config (
		user_id STRING,
		default_endpoint_id STRING,
		default_domain_id STRING,
		default_site_id STRING,
		system_prompt STRING
	)`,
}

func NewWarehouseStore(ctx context.Context, cfg config.WarehouseConfig, source EndpointSource) (*WarehouseStore, error) {
	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(cfg.Hostname),
		dbsql.WithHTTPPath(cfg.HTTPPath),
		dbsql.WithPort(443),
		dbsql.WithAccessToken(cfg.Token),
		dbsql.WithInitialNamespace(cfg.Catalog, cfg.Schema),
	)
	if err != nil {
		return nil, fmt.Errorf("warehouse connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("warehouse ping: %w", err)
	}
	s := &WarehouseStore{db: db, cache: newConfigCache(), source: source}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.hydrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("hostname", cfg.Hostname).Str("schema", cfg.Catalog+"."+cfg.Schema).Msg("warehouse store ready")
	return s, nil
}

func (s *WarehouseStore) ensureSchema(ctx context.Context) error {
	for _, ddl := range warehouseDDL {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("warehouse schema: %w", err)
		}
	}
	return nil
}

// hydrate fills the cache from the durable tables, seeding the
// defaults first when the tables are empty.
func (s *WarehouseStore) hydrate(ctx context.Context) error {
	domains, err := s.loadDomains(ctx)
	if err != nil {
		return err
	}
	if len(domains) == 0 {
		for _, d := range defaultDomains() {
			if err := s.insertDomainRow(ctx, d); err != nil {
				return err
			}
		}
		for _, site := range defaultSites() {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO sites VALUES (:id, :name, :location, :type)`,
				dbsql.Parameter{Name: "id", Value: site.ID},
				dbsql.Parameter{Name: "name", Value: site.Name},
				dbsql.Parameter{Name: "location", Value: site.Location},
				dbsql.Parameter{Name: "type", Value: site.Type},
			); err != nil {
				return fmt.Errorf("seed site %s: %w", site.ID, err)
			}
		}
		for _, e := range defaultEndpoints() {
			if err := s.insertEndpointRow(ctx, e); err != nil {
				return err
			}
		}
		domains, err = s.loadDomains(ctx)
		if err != nil {
			return err
		}
	}
	sites, err := s.loadSites(ctx)
	if err != nil {
		return err
	}
	endpoints, err := s.loadEndpoints(ctx)
	if err != nil {
		return err
	}
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return err
	}
	s.cache.load(domains, sites, endpoints, cfg)
	return nil
}

func (s *WarehouseStore) loadDomains(ctx context.Context) ([]models.Domain, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), COALESCE(system_prompt, ''), COALESCE(icon, '') FROM domains`)
	if err != nil {
		return nil, fmt.Errorf("load domains: %w", err)
	}
	defer rows.Close()
	var out []models.Domain
	for rows.Next() {
		var d models.Domain
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.SystemPrompt, &d.Icon); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *WarehouseStore) loadSites(ctx context.Context) ([]models.Site, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, location, type FROM sites`)
	if err != nil {
		return nil, fmt.Errorf("load sites: %w", err)
	}
	defer rows.Close()
	var out []models.Site
	for rows.Next() {
		var site models.Site
		if err := rows.Scan(&site.ID, &site.Name, &site.Location, &site.Type); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		out = append(out, site)
	}
	return out, rows.Err()
}

func (s *WarehouseStore) loadEndpoints(ctx context.Context) ([]models.Endpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), type, is_default, COALESCE(domain_id, '') FROM endpoints`)
	if err != nil {
		return nil, fmt.Errorf("load endpoints: %w", err)
	}
	defer rows.Close()
	var out []models.Endpoint
	for rows.Next() {
		var e models.Endpoint
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Type, &e.IsDefault, &e.DomainID); err != nil {
			return nil, fmt.Errorf("scan endpoint: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *WarehouseStore) loadConfig(ctx context.Context) (models.Config, error) {
	var cfg models.Config
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(default_endpoint_id, ''), COALESCE(default_domain_id, ''), COALESCE(default_site_id, ''), COALESCE(system_prompt, '')
		 FROM user_config WHERE user_id = :uid`,
		dbsql.Parameter{Name: "uid", Value: "default"},
	).Scan(&cfg.DefaultEndpointID, &cfg.DefaultDomainID, &cfg.DefaultSiteID, &cfg.SystemPrompt)
	if err == sql.ErrNoRows {
		return models.Config{}, nil
	}
	if err != nil {
		return models.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (s *WarehouseStore) insertDomainRow(ctx context.Context, d models.Domain) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO domains VALUES (:id, :name, :description, :system_prompt, :icon)`,
		dbsql.Parameter{Name: "id", Value: d.ID},
		dbsql.Parameter{Name: "name", Value: d.Name},
		dbsql.Parameter{Name: "description", Value: d.Description},
		dbsql.Parameter{Name: "system_prompt", Value: d.SystemPrompt},
		dbsql.Parameter{Name: "icon", Value: d.Icon},
	)
	if err != nil {
		return fmt.Errorf("insert domain %s: %w", d.ID, err)
	}
	return nil
}

func (s *WarehouseStore) insertEndpointRow(ctx context.Context, e models.Endpoint) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO endpoints VALUES (:id, :name, :description, :type, :is_default, :domain_id)`,
		dbsql.Parameter{Name: "id", Value: e.ID},
		dbsql.Parameter{Name: "name", Value: e.Name},
		dbsql.Parameter{Name: "description", Value: e.Description},
		dbsql.Parameter{Name: "type", Value: string(e.Type)},
		dbsql.Parameter{Name: "is_default", Value: e.IsDefault},
		dbsql.Parameter{Name: "domain_id", Value: e.DomainID},
	)
	if err != nil {
		return fmt.Errorf("insert endpoint %s: %w", e.ID, err)
	}
	return nil
}

// RefreshEndpointsFromRemote refreshes the cache, then writes the new
// set through to the endpoints table. A persistence failure is logged
// but does not undo the in-memory refresh.
func (s *WarehouseStore) RefreshEndpointsFromRemote(ctx context.Context) ([]models.Endpoint, error) {
	endpoints, replaced := refreshEndpoints(ctx, s.source, s.cache)
	if replaced {
		if err := s.persistEndpoints(ctx, endpoints); err != nil {
			log.Warn().Err(err).Msg("could not persist refreshed endpoints")
		}
	}
	return endpoints, nil
}

func (s *WarehouseStore) persistEndpoints(ctx context.Context, endpoints []models.Endpoint) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM endpoints`); err != nil {
		return fmt.Errorf("clear endpoints: %w", err)
	}
	for _, e := range endpoints {
		if err := s.insertEndpointRow(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ── Conversations ────────────────────────────────────────────

func (s *WarehouseStore) GetConversations(ctx context.Context, userEmail string) ([]models.Conversation, error) {
	query := `SELECT id, title, endpoint_id, COALESCE(domain_id, ''), COALESCE(site_id, ''), COALESCE(user_email, ''), created_at, updated_at
		FROM conversations ORDER BY updated_at DESC`
	args := []any{}
	if userEmail != "" {
		query = `SELECT id, title, endpoint_id, COALESCE(domain_id, ''), COALESCE(site_id, ''), COALESCE(user_email, ''), created_at, updated_at
			FROM conversations WHERE user_email = :email ORDER BY updated_at DESC`
		args = append(args, dbsql.Parameter{Name: "email", Value: userEmail})
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.EndpointID, &c.DomainID, &c.SiteID, &c.UserEmail, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.Messages = []models.Message{}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	for i := range out {
		msgs, err := s.loadMessages(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Messages = msgs
	}
	return out, nil
}

func (s *WarehouseStore) loadMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, timestamp FROM messages WHERE conversation_id = :cid ORDER BY timestamp ASC`,
		dbsql.Parameter{Name: "cid", Value: conversationID})
	if err != nil {
		return nil, fmt.Errorf("list messages for %s: %w", conversationID, err)
	}
	defer rows.Close()
	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *WarehouseStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, endpoint_id, COALESCE(domain_id, ''), COALESCE(site_id, ''), COALESCE(user_email, ''), created_at, updated_at
		 FROM conversations WHERE id = :id`,
		dbsql.Parameter{Name: "id", Value: id},
	).Scan(&c.ID, &c.Title, &c.EndpointID, &c.DomainID, &c.SiteID, &c.UserEmail, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &ErrNotFound{Entity: "conversation", Key: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}
	msgs, err := s.loadMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Messages = msgs
	return &c, nil
}

func (s *WarehouseStore) CreateConversation(ctx context.Context, endpointID, title, domainID, siteID, userEmail string) (*models.Conversation, error) {
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations VALUES (:id, :title, :endpoint_id, :domain_id, :site_id, :user_email, :created_at, :updated_at)`,
		dbsql.Parameter{Name: "id", Value: c.ID},
		dbsql.Parameter{Name: "title", Value: c.Title},
		dbsql.Parameter{Name: "endpoint_id", Value: c.EndpointID},
		dbsql.Parameter{Name: "domain_id", Value: c.DomainID},
		dbsql.Parameter{Name: "site_id", Value: c.SiteID},
		dbsql.Parameter{Name: "user_email", Value: c.UserEmail},
		dbsql.Parameter{Name: "created_at", Value: c.CreatedAt},
		dbsql.Parameter{Name: "updated_at", Value: c.UpdatedAt},
	)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

func (s *WarehouseStore) AddMessage(ctx context.Context, conversationID string, msg models.InsertMessage) (*models.Message, error) {
	// Warehouse DML does not report affected rows reliably, so
	// existence is checked explicitly.
	if _, err := s.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	ts := msg.Timestamp
	if ts == 0 {
		ts = nowMillis()
	}
	m := &models.Message{
		ID:        uuid.NewString(),
		Role:      msg.Role,
		Content:   msg.Content,
		Timestamp: ts,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages VALUES (:id, :conversation_id, :role, :content, :timestamp)`,
		dbsql.Parameter{Name: "id", Value: m.ID},
		dbsql.Parameter{Name: "conversation_id", Value: conversationID},
		dbsql.Parameter{Name: "role", Value: string(m.Role)},
		dbsql.Parameter{Name: "content", Value: m.Content},
		dbsql.Parameter{Name: "timestamp", Value: m.Timestamp},
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	// Warehouses have no multi-statement transactions. The message is
	// already durable at this point, so a failed touch only leaves
	// updated_at stale; reporting an error here would prompt callers to
	// retry and duplicate the insert.
	_, err = s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = :now WHERE id = :id`,
		dbsql.Parameter{Name: "now", Value: nowMillis()},
		dbsql.Parameter{Name: "id", Value: conversationID},
	)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).
			Msg("message stored but conversation touch failed")
	}
	return m, nil
}

func (s *WarehouseStore) UpdateConversation(ctx context.Context, id string, upd models.ConversationUpdate) (*models.Conversation, error) {
	current, err := s.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	title := current.Title
	if upd.Title != nil {
		title = *upd.Title
	}
	endpointID := current.EndpointID
	if upd.EndpointID != nil {
		endpointID = *upd.EndpointID
	}
	domainID := current.DomainID
	if upd.DomainID != nil {
		domainID = *upd.DomainID
	}
	siteID := current.SiteID
	if upd.SiteID != nil {
		siteID = *upd.SiteID
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE conversations SET title = :title, endpoint_id = :endpoint_id, domain_id = :domain_id, site_id = :site_id, updated_at = :now WHERE id = :id`,
		dbsql.Parameter{Name: "title", Value: title},
		dbsql.Parameter{Name: "endpoint_id", Value: endpointID},
		dbsql.Parameter{Name: "domain_id", Value: domainID},
		dbsql.Parameter{Name: "site_id", Value: siteID},
		dbsql.Parameter{Name: "now", Value: nowMillis()},
		dbsql.Parameter{Name: "id", Value: id},
	)
	if err != nil {
		return nil, fmt.Errorf("update conversation %s: %w", id, err)
	}
	return s.GetConversation(ctx, id)
}

func (s *WarehouseStore) DeleteConversation(ctx context.Context, id string) (bool, error) {
	if _, err := s.GetConversation(ctx, id); err != nil {
		var nf *ErrNotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	// no FK cascade in the warehouse; delete children first
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = :id`,
		dbsql.Parameter{Name: "id", Value: id}); err != nil {
		return false, fmt.Errorf("delete messages for %s: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = :id`,
		dbsql.Parameter{Name: "id", Value: id}); err != nil {
		return false, fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return true, nil
}

// ── Configuration entities (cache + durable write-through) ───

func (s *WarehouseStore) GetDomains(ctx context.Context) ([]models.Domain, error) {
	return s.cache.listDomains(), nil
}

func (s *WarehouseStore) GetDomain(ctx context.Context, id string) (*models.Domain, error) {
	d, ok := s.cache.getDomain(id)
	if !ok {
		return nil, &ErrNotFound{Entity: "domain", Key: id}
	}
	return &d, nil
}

func (s *WarehouseStore) CreateDomain(ctx context.Context, in models.InsertDomain) (*models.Domain, error) {
	d := s.cache.createDomain(in)
	if err := s.insertDomainRow(ctx, d); err != nil {
		s.cache.deleteDomain(d.ID)
		return nil, err
	}
	return &d, nil
}

func (s *WarehouseStore) UpdateDomain(ctx context.Context, id string, upd models.DomainUpdate) (*models.Domain, error) {
	d, ok := s.cache.updateDomain(id, upd)
	if !ok {
		return nil, &ErrNotFound{Entity: "domain", Key: id}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE domains SET name = :name, description = :description, system_prompt = :system_prompt, icon = :icon WHERE id = :id`,
		dbsql.Parameter{Name: "name", Value: d.Name},
		dbsql.Parameter{Name: "description", Value: d.Description},
		dbsql.Parameter{Name: "system_prompt", Value: d.SystemPrompt},
		dbsql.Parameter{Name: "icon", Value: d.Icon},
		dbsql.Parameter{Name: "id", Value: id},
	)
	if err != nil {
		return nil, fmt.Errorf("update domain %s: %w", id, err)
	}
	return &d, nil
}

func (s *WarehouseStore) DeleteDomain(ctx context.Context, id string) (bool, error) {
	existed := s.cache.deleteDomain(id)
	if !existed {
		return false, nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM domains WHERE id = :id`,
		dbsql.Parameter{Name: "id", Value: id}); err != nil {
		return true, fmt.Errorf("delete domain %s: %w", id, err)
	}
	return true, nil
}

func (s *WarehouseStore) GetSites(ctx context.Context) ([]models.Site, error) {
	return s.cache.listSites(), nil
}

func (s *WarehouseStore) GetSite(ctx context.Context, id string) (*models.Site, error) {
	site, ok := s.cache.getSite(id)
	if !ok {
		return nil, &ErrNotFound{Entity: "site", Key: id}
	}
	return &site, nil
}

func (s *WarehouseStore) GetEndpoints(ctx context.Context, domainID string) ([]models.Endpoint, error) {
	return s.cache.listEndpoints(domainID), nil
}

func (s *WarehouseStore) GetEndpoint(ctx context.Context, id string) (*models.Endpoint, error) {
	e, ok := s.cache.getEndpoint(id)
	if !ok {
		return nil, &ErrNotFound{Entity: "endpoint", Key: id}
	}
	return &e, nil
}

func (s *WarehouseStore) CreateEndpoint(ctx context.Context, in models.InsertEndpoint) (*models.Endpoint, error) {
	e := s.cache.createEndpoint(in)
	if err := s.insertEndpointRow(ctx, e); err != nil {
		s.cache.deleteEndpoint(e.ID)
		return nil, err
	}
	return &e, nil
}

func (s *WarehouseStore) UpdateEndpoint(ctx context.Context, id string, upd models.EndpointUpdate) (*models.Endpoint, error) {
	e, ok := s.cache.updateEndpoint(id, upd)
	if !ok {
		return nil, &ErrNotFound{Entity: "endpoint", Key: id}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE endpoints SET name = :name, description = :description, type = :type, is_default = :is_default, domain_id = :domain_id WHERE id = :id`,
		dbsql.Parameter{Name: "name", Value: e.Name},
		dbsql.Parameter{Name: "description", Value: e.Description},
		dbsql.Parameter{Name: "type", Value: string(e.Type)},
		dbsql.Parameter{Name: "is_default", Value: e.IsDefault},
		dbsql.Parameter{Name: "domain_id", Value: e.DomainID},
		dbsql.Parameter{Name: "id", Value: id},
	)
	if err != nil {
		return nil, fmt.Errorf("update endpoint %s: %w", id, err)
	}
	return &e, nil
}

func (s *WarehouseStore) DeleteEndpoint(ctx context.Context, id string) (bool, error) {
	existed := s.cache.deleteEndpoint(id)
	if !existed {
		return false, nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM endpoints WHERE id = :id`,
		dbsql.Parameter{Name: "id", Value: id}); err != nil {
		return true, fmt.Errorf("delete endpoint %s: %w", id, err)
	}
	return true, nil
}

func (s *WarehouseStore) GetConfig(ctx context.Context) (models.Config, error) {
	return s.cache.getConfig(), nil
}

func (s *WarehouseStore) SetConfig(ctx context.Context, cfg models.Config) (models.Config, error) {
	s.cache.setConfig(cfg)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_config WHERE user_id = :uid`,
		dbsql.Parameter{Name: "uid", Value: "default"}); err != nil {
		return cfg, fmt.Errorf("clear config: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_config VALUES (:uid, :default_endpoint_id, :default_domain_id, :default_site_id, :system_prompt)`,
		dbsql.Parameter{Name: "uid", Value: "default"},
		dbsql.Parameter{Name: "default_endpoint_id", Value: cfg.DefaultEndpointID},
		dbsql.Parameter{Name: "default_domain_id", Value: cfg.DefaultDomainID},
		dbsql.Parameter{Name: "default_site_id", Value: cfg.DefaultSiteID},
		dbsql.Parameter{Name: "system_prompt", Value: cfg.SystemPrompt},
	)
	if err != nil {
		return cfg, fmt.Errorf("persist config: %w", err)
	}
	return cfg, nil
}

func (s *WarehouseStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *WarehouseStore) Close() error {
	return s.db.Close()
}
