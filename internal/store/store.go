// Package store provides the persistence contract for the Strata
// backend and its interchangeable implementations: in-memory, raw
// Postgres, Lakebase (Postgres with OAuth token rotation), and a
// Databricks SQL warehouse. Handler code depends only on the Store
// interface; the selector picks a concrete backend at startup.
package store

import (
	"context"
	"time"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

// Store is the uniform persistence contract. Every backend satisfies
// it with identical observable behavior; backends differ only in
// durability and in how remote refresh and credentials are handled.
type Store interface {
	// RefreshEndpointsFromRemote replaces the endpoint set with the live
	// listing from the serving API. On failure or an empty listing the
	// existing set is kept, so callers never observe an emptied set because
	// a refresh went wrong. The post-refresh set is always returned.
	RefreshEndpointsFromRemote(ctx context.Context) ([]models.Endpoint, error)

	// Conversations, ordered by updatedAt descending. A non-empty
	// userEmail restricts the result to that owner.
	GetConversations(ctx context.Context, userEmail string) ([]models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	CreateConversation(ctx context.Context, endpointID, title, domainID, siteID, userEmail string) (*models.Conversation, error)
	// AddMessage appends to the conversation's history and bumps the
	// conversation's updatedAt. Fails with ErrNotFound when the
	// conversation does not exist.
	AddMessage(ctx context.Context, conversationID string, msg models.InsertMessage) (*models.Message, error)
	UpdateConversation(ctx context.Context, id string, upd models.ConversationUpdate) (*models.Conversation, error)
	// DeleteConversation cascades to the conversation's messages and
	// reports whether a conversation existed.
	DeleteConversation(ctx context.Context, id string) (bool, error)

	GetDomains(ctx context.Context) ([]models.Domain, error)
	GetDomain(ctx context.Context, id string) (*models.Domain, error)
	CreateDomain(ctx context.Context, d models.InsertDomain) (*models.Domain, error)
	UpdateDomain(ctx context.Context, id string, upd models.DomainUpdate) (*models.Domain, error)
	DeleteDomain(ctx context.Context, id string) (bool, error)

	GetSites(ctx context.Context) ([]models.Site, error)
	GetSite(ctx context.Context, id string) (*models.Site, error)

	// GetEndpoints filters by domain: an endpoint is visible when it has
	// no domain, its domain matches, or it is a foundation model.
	GetEndpoints(ctx context.Context, domainID string) ([]models.Endpoint, error)
	GetEndpoint(ctx context.Context, id string) (*models.Endpoint, error)
	CreateEndpoint(ctx context.Context, e models.InsertEndpoint) (*models.Endpoint, error)
	UpdateEndpoint(ctx context.Context, id string, upd models.EndpointUpdate) (*models.Endpoint, error)
	DeleteEndpoint(ctx context.Context, id string) (bool, error)

	GetConfig(ctx context.Context) (models.Config, error)
	// SetConfig replaces the singleton config wholesale.
	SetConfig(ctx context.Context, cfg models.Config) (models.Config, error)

	// Ping checks backend health.
	Ping(ctx context.Context) error

	// Close releases pools and stops background work.
	Close() error
}

// EndpointSource lists live serving endpoints for refresh. Satisfied
// by remote.Client; tests substitute fakes.
type EndpointSource interface {
	Configured() bool
	ListServingEndpoints(ctx context.Context, userToken string) ([]models.Endpoint, error)
}

// ErrNotFound is returned when a referenced entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}

// nowMillis is the single clock used for createdAt/updatedAt/timestamp
// fields. Unix milliseconds, matching the client's wire format.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
