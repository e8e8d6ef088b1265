package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

// configCache holds the low-churn configuration entities (domains,
// sites, endpoints, singleton config). Each backend instance owns
// exactly one cache; there is no process-global state. All access
// goes through the methods below, which take the cache's own lock,
// so backends stay correct under parallel request handling.
type configCache struct {
	mu        sync.RWMutex
	domains   map[string]models.Domain
	sites     map[string]models.Site
	endpoints map[string]models.Endpoint
	config    models.Config
}

func newConfigCache() *configCache {
	return &configCache{
		domains:   make(map[string]models.Domain),
		sites:     make(map[string]models.Site),
		endpoints: make(map[string]models.Endpoint),
	}
}

// seedDefaults loads the fixed bootstrap data. Safe to call on an
// empty cache only.
func (c *configCache) seedDefaults() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range defaultDomains() {
		c.domains[d.ID] = d
	}
	for _, s := range defaultSites() {
		c.sites[s.ID] = s
	}
	for _, e := range defaultEndpoints() {
		c.endpoints[e.ID] = e
	}
}

// load replaces the cache contents from externally persisted rows.
func (c *configCache) load(domains []models.Domain, sites []models.Site, endpoints []models.Endpoint, cfg models.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range domains {
		c.domains[d.ID] = d
	}
	for _, s := range sites {
		c.sites[s.ID] = s
	}
	for _, e := range endpoints {
		c.endpoints[e.ID] = e
	}
	c.config = cfg
}

// ── Domains ──────────────────────────────────────────────────

func (c *configCache) listDomains() []models.Domain {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Domain, 0, len(c.domains))
	for _, d := range c.domains {
		out = append(out, d)
	}
	return out
}

func (c *configCache) getDomain(id string) (models.Domain, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.domains[id]
	return d, ok
}

// createDomain assigns a slug id derived from the name, suffixing a
// counter on collision. The check-then-insert runs under one lock
// acquisition so concurrent creates cannot mint duplicate ids.
func (c *configCache) createDomain(in models.InsertDomain) models.Domain {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uniqueSlug(in.Name, func(s string) bool {
		_, taken := c.domains[s]
		return taken
	})
	d := models.Domain{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		SystemPrompt: in.SystemPrompt,
		Icon:         in.Icon,
	}
	c.domains[id] = d
	return d
}

func (c *configCache) updateDomain(id string, upd models.DomainUpdate) (models.Domain, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.domains[id]
	if !ok {
		return models.Domain{}, false
	}
	if upd.Name != nil {
		d.Name = *upd.Name
	}
	if upd.Description != nil {
		d.Description = *upd.Description
	}
	if upd.SystemPrompt != nil {
		d.SystemPrompt = *upd.SystemPrompt
	}
	if upd.Icon != nil {
		d.Icon = *upd.Icon
	}
	c.domains[id] = d
	return d, true
}

func (c *configCache) deleteDomain(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.domains[id]
	delete(c.domains, id)
	return ok
}

// ── Sites ────────────────────────────────────────────────────

func (c *configCache) listSites() []models.Site {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Site, 0, len(c.sites))
	for _, s := range c.sites {
		out = append(out, s)
	}
	return out
}

func (c *configCache) getSite(id string) (models.Site, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sites[id]
	return s, ok
}

// ── Endpoints ────────────────────────────────────────────────

// listEndpoints applies the domain visibility rule: with no domain
// filter (or the generic domain), endpoints with no domain binding
// and all foundation models are visible; with a concrete domain,
// additionally those bound to that domain.
func (c *configCache) listEndpoints(domainID string) []models.Endpoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Endpoint, 0, len(c.endpoints))
	for _, e := range c.endpoints {
		if endpointVisible(e, domainID) {
			out = append(out, e)
		}
	}
	return out
}

// allEndpoints returns the unfiltered set, for refresh results.
func (c *configCache) allEndpoints() []models.Endpoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Endpoint, 0, len(c.endpoints))
	for _, e := range c.endpoints {
		out = append(out, e)
	}
	return out
}

func endpointVisible(e models.Endpoint, domainID string) bool {
	if domainID == "" || domainID == "generic" {
		return e.DomainID == "" || e.Type == models.EndpointFoundation
	}
	return e.DomainID == "" || e.DomainID == domainID || e.Type == models.EndpointFoundation
}

func (c *configCache) getEndpoint(id string) (models.Endpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.endpoints[id]
	return e, ok
}

func (c *configCache) createEndpoint(in models.InsertEndpoint) models.Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := uniqueSlug(in.Name, func(s string) bool {
		_, taken := c.endpoints[s]
		return taken
	})
	e := models.Endpoint{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
		IsDefault:   in.IsDefault,
		DomainID:    in.DomainID,
	}
	c.endpoints[id] = e
	return e
}

func (c *configCache) updateEndpoint(id string, upd models.EndpointUpdate) (models.Endpoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.endpoints[id]
	if !ok {
		return models.Endpoint{}, false
	}
	if upd.Name != nil {
		e.Name = *upd.Name
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Type != nil {
		e.Type = *upd.Type
	}
	if upd.IsDefault != nil {
		e.IsDefault = *upd.IsDefault
	}
	if upd.DomainID != nil {
		e.DomainID = *upd.DomainID
	}
	c.endpoints[id] = e
	return e, true
}

func (c *configCache) deleteEndpoint(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.endpoints[id]
	delete(c.endpoints, id)
	return ok
}

// replaceEndpoints swaps in a new endpoint set. A nil or empty set is
// ignored so a failed remote listing cannot wipe working endpoints.
func (c *configCache) replaceEndpoints(endpoints []models.Endpoint) {
	if len(endpoints) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoints = make(map[string]models.Endpoint, len(endpoints))
	for _, e := range endpoints {
		c.endpoints[e.ID] = e
	}
}

// ── Config ───────────────────────────────────────────────────

func (c *configCache) getConfig() models.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *configCache) setConfig(cfg models.Config) models.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
	return cfg
}

// refreshEndpoints is the shared implementation of
// RefreshEndpointsFromRemote for cache-backed backends: fetch the
// live listing and replace the set only when the fetch yielded
// anything. Failures keep the existing set and are logged, never
// propagated as hard errors. The second result reports whether the
// set was actually replaced, for backends that persist it.
func refreshEndpoints(ctx context.Context, source EndpointSource, cache *configCache) ([]models.Endpoint, bool) {
	if source == nil || !source.Configured() {
		log.Debug().Msg("remote serving API not configured, keeping current endpoints")
		return cache.allEndpoints(), false
	}
	endpoints, err := source.ListServingEndpoints(ctx, "")
	if err != nil {
		log.Warn().Err(err).Msg("endpoint refresh failed, keeping current endpoints")
		return cache.allEndpoints(), false
	}
	if len(endpoints) == 0 {
		log.Info().Msg("remote listed no endpoints, keeping current endpoints")
		return cache.allEndpoints(), false
	}
	cache.replaceEndpoints(endpoints)
	log.Info().Int("count", len(endpoints)).Msg("endpoints refreshed from remote")
	return cache.allEndpoints(), true
}
