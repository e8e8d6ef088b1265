// Package models defines the entity types shared by the Strata backend:
// conversations and their messages, plus the low-churn configuration
// entities (domains, sites, serving endpoints, user config).
package models

// ── Messages ─────────────────────────────────────────────────

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is a single chat turn. Timestamps are Unix milliseconds to
// match the web client's wire format. Messages are immutable once
// stored; they are removed only when their conversation is deleted.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
}

// InsertMessage is the caller-supplied shape for appending a message.
// The storage layer assigns the id.
type InsertMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"`
}

// ── Conversations ────────────────────────────────────────────

// Conversation owns an append-only, chronologically ordered message
// history. UpdatedAt advances on every message append and field update.
type Conversation struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Messages   []Message `json:"messages"`
	EndpointID string    `json:"endpointId"`
	DomainID   string    `json:"domainId,omitempty"`
	SiteID     string    `json:"siteId,omitempty"`
	UserEmail  string    `json:"userEmail,omitempty"`
	CreatedAt  int64     `json:"createdAt"`
	UpdatedAt  int64     `json:"updatedAt"`
}

// ConversationUpdate carries the fields a caller may change on an
// existing conversation. Nil pointers mean "leave as is".
type ConversationUpdate struct {
	Title      *string `json:"title,omitempty"`
	EndpointID *string `json:"endpointId,omitempty"`
	DomainID   *string `json:"domainId,omitempty"`
	SiteID     *string `json:"siteId,omitempty"`
}

// ── Domains ──────────────────────────────────────────────────

// Domain is a subject-matter persona bundling a system prompt with
// display metadata.
type Domain struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
	Icon         string `json:"icon,omitempty"`
}

type InsertDomain struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
	Icon         string `json:"icon,omitempty"`
}

// DomainUpdate is a partial domain edit; nil pointers are untouched.
type DomainUpdate struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	SystemPrompt *string `json:"systemPrompt,omitempty"`
	Icon         *string `json:"icon,omitempty"`
}

// ── Sites ────────────────────────────────────────────────────

// Site is read-only organizational reference data (mine sites).
type Site struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

// ── Endpoints ────────────────────────────────────────────────

type EndpointType string

const (
	EndpointFoundation EndpointType = "foundation"
	EndpointCustom     EndpointType = "custom"
	EndpointAgent      EndpointType = "agent"
)

// Endpoint is a named remote model-serving target. Foundation-type
// endpoints are visible to every domain filter.
type Endpoint struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        EndpointType `json:"type"`
	IsDefault   bool         `json:"isDefault"`
	DomainID    string       `json:"domainId,omitempty"`
}

type InsertEndpoint struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        EndpointType `json:"type"`
	IsDefault   bool         `json:"isDefault"`
	DomainID    string       `json:"domainId,omitempty"`
}

// EndpointUpdate is a partial endpoint edit; nil pointers are untouched.
type EndpointUpdate struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Type        *EndpointType `json:"type,omitempty"`
	IsDefault   *bool         `json:"isDefault,omitempty"`
	DomainID    *string       `json:"domainId,omitempty"`
}

// ── Config ───────────────────────────────────────────────────

// Config is the singleton tenant-wide defaults record. SetConfig
// replaces it wholesale; there are no partial-field semantics.
type Config struct {
	DefaultEndpointID string `json:"defaultEndpointId,omitempty"`
	DefaultDomainID   string `json:"defaultDomainId,omitempty"`
	DefaultSiteID     string `json:"defaultSiteId,omitempty"`
	SystemPrompt      string `json:"systemPrompt,omitempty"`
}

// ── Chat ─────────────────────────────────────────────────────

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
	EndpointID     string `json:"endpointId"`
	DomainID       string `json:"domainId,omitempty"`
	SiteID         string `json:"siteId,omitempty"`
}

// ChatResponse returns the assistant message and the (possibly newly
// created) conversation id.
type ChatResponse struct {
	Message        Message `json:"message"`
	ConversationID string  `json:"conversationId"`
}
