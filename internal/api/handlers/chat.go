package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/api/middleware"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/remote"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

const maxTitleLen = 50

// Chat handles one chat turn: resolve the conversation (creating it
// on first message), persist the user message, obtain an assistant
// reply from the serving endpoint (or the canned fallback when the
// remote is unreachable or not configured), persist and return it.
// A remote failure is never surfaced to the user as an error.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if req.EndpointID == "" {
		respondError(w, http.StatusBadRequest, "Endpoint is required")
		return
	}

	ctx := r.Context()
	uc := middleware.GetUserContext(ctx)

	// Lookups are tolerant: a stale endpoint or domain id degrades the
	// reply quality, it does not fail the turn.
	endpoint, _ := h.Store.GetEndpoint(ctx, req.EndpointID)
	domainID := req.DomainID
	if domainID == "" {
		domainID = "generic"
	}
	domain, _ := h.Store.GetDomain(ctx, domainID)
	siteID := req.SiteID
	if siteID == "" {
		siteID = "all-sites"
	}
	site, _ := h.Store.GetSite(ctx, siteID)

	var conversation *models.Conversation
	var err error
	if req.ConversationID != "" {
		conversation, err = h.Store.GetConversation(ctx, req.ConversationID)
		if err != nil {
			respondStoreError(w, err)
			return
		}
	} else {
		title := req.Message
		if runes := []rune(title); len(runes) > maxTitleLen {
			title = string(runes[:maxTitleLen]) + "..."
		}
		conversation, err = h.Store.CreateConversation(ctx, req.EndpointID, title, req.DomainID, req.SiteID, uc.Email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	// History as it stood before this turn.
	history := make([]remote.ChatMessage, 0, len(conversation.Messages))
	for _, m := range conversation.Messages {
		history = append(history, remote.ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	if _, err := h.Store.AddMessage(ctx, conversation.ID, models.InsertMessage{
		Role:    models.RoleUser,
		Content: req.Message,
	}); err != nil {
		respondStoreError(w, err)
		return
	}

	reply := h.assistantReply(r, req, endpoint, domain, site, history, uc)

	assistant, err := h.Store.AddMessage(ctx, conversation.ID, models.InsertMessage{
		Role:    models.RoleAssistant,
		Content: reply,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.ChatResponse{
		Message:        *assistant,
		ConversationID: conversation.ID,
	})
}

func (h *Handlers) assistantReply(r *http.Request, req models.ChatRequest, endpoint *models.Endpoint, domain *models.Domain, site *models.Site, history []remote.ChatMessage, uc middleware.UserContext) string {
	endpointName := req.EndpointID
	if endpoint != nil {
		endpointName = endpoint.Name
	}
	domainName := "General"
	systemPrompt := "You are a helpful AI assistant."
	if domain != nil {
		domainName = domain.Name
		systemPrompt = domain.SystemPrompt
	}
	siteName := "All Sites"
	if site != nil {
		siteName = site.Name
		if site.ID != "all-sites" {
			systemPrompt += " Focus on data and context specific to " + site.Name + " (" + site.Location + ")."
		}
	}

	if h.Remote == nil || !h.Remote.Configured() {
		return mockResponse(req.Message, endpointName, domainName, siteName, len(history))
	}

	messages := make([]remote.ChatMessage, 0, len(history)+2)
	messages = append(messages, remote.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, remote.ChatMessage{Role: "user", Content: req.Message})

	// Seeded endpoint ids carry a "databricks-" prefix the serving API
	// does not know about.
	servingName := strings.TrimPrefix(req.EndpointID, "databricks-")

	reply, err := h.Remote.Invoke(r.Context(), servingName, messages, uc.AccessToken)
	if err != nil {
		if !errors.Is(err, remote.ErrNotConfigured) {
			log.Warn().Err(err).Str("endpoint", servingName).Msg("model invocation failed, using fallback response")
		}
		return mockResponse(req.Message, endpointName, domainName, siteName, len(history))
	}
	return reply
}
