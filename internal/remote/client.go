// Package remote wraps the Databricks serving-endpoints API: listing
// and classifying model endpoints, invoking them with a chat history,
// and OAuth service-principal token exchange.
//
// Every transport failure, non-200 status, or malformed body surfaces
// as ErrUnavailable. Callers are expected to treat that as "remote
// unavailable" and fall back to cached local state; remote failures
// must never take down the conversation path.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/config"
	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

// ErrUnavailable is the single failure category every remote problem
// collapses into. Inspect logs, not the error, for the cause.
var ErrUnavailable = errors.New("remote serving API unavailable")

// ErrNotConfigured is returned when a call requires credentials and
// neither a user token nor service-principal credentials exist.
var ErrNotConfigured = errors.New("databricks credentials not configured")

// placeholderResponse is returned when an invocation succeeds but the
// response carries no extractable text.
const placeholderResponse = "I received your message but couldn't generate a response."

// ChatMessage is the role/content pair sent to an invocation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to one Databricks workspace. The zero value is not
// usable; construct with NewClient.
type Client struct {
	host         string
	token        string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu      sync.Mutex
	spToken string // cached service-principal access token
}

// NewClient builds a client from the remote section of the
// configuration. The HTTP timeout covers model invocations, which can
// be slow for large generations.
func NewClient(cfg config.RemoteConfig) *Client {
	return &Client{
		host:         cfg.Host,
		token:        cfg.Token,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether the client has a host and some credential.
func (c *Client) Configured() bool {
	if c.host == "" {
		return false
	}
	return c.token != "" || (c.clientID != "" && c.clientSecret != "")
}

// accessToken resolves the bearer token for a call. A user-supplied
// token always wins; otherwise the static token, then the cached
// service-principal token, minted lazily on first need.
func (c *Client) accessToken(ctx context.Context, userToken string) (string, error) {
	if userToken != "" {
		return userToken, nil
	}
	if c.token != "" {
		return c.token, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spToken != "" {
		return c.spToken, nil
	}
	if c.clientID == "" || c.clientSecret == "" {
		return "", ErrNotConfigured
	}

	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {"all-apis"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/oidc/v1/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token exchange status %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", ErrUnavailable, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: token exchange returned empty token", ErrUnavailable)
	}
	c.spToken = body.AccessToken
	return c.spToken, nil
}

// listRaw fetches the raw serving endpoint descriptors.
func (c *Client) listRaw(ctx context.Context, userToken string, query url.Values) ([]ServingEndpoint, error) {
	token, err := c.accessToken(ctx, userToken)
	if err != nil {
		return nil, err
	}

	u := c.host + "/api/2.0/serving-endpoints"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list endpoints status %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		Endpoints []ServingEndpoint `json:"endpoints"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode endpoint list: %v", ErrUnavailable, err)
	}
	return body.Endpoints, nil
}

// ListServingEndpoints returns all serving endpoints visible to the
// token, each classified and described. The first endpoint in API
// order is marked as the default.
func (c *Client) ListServingEndpoints(ctx context.Context, userToken string) ([]models.Endpoint, error) {
	if !c.Configured() && userToken == "" {
		return nil, ErrNotConfigured
	}

	raw, err := c.listRaw(ctx, userToken, nil)
	if err != nil {
		return nil, err
	}

	endpoints := make([]models.Endpoint, 0, len(raw))
	for i, ep := range raw {
		epType := Classify(ep)
		endpoints = append(endpoints, models.Endpoint{
			ID:          ep.Name,
			Name:        ep.Name,
			Description: describe(ep, epType),
			Type:        epType,
			IsDefault:   i == 0,
		})
	}
	return endpoints, nil
}

// ListAgents returns only the agent-typed serving endpoints.
func (c *Client) ListAgents(ctx context.Context, userToken string) ([]models.Endpoint, error) {
	if !c.Configured() && userToken == "" {
		return nil, ErrNotConfigured
	}

	raw, err := c.listRaw(ctx, userToken, nil)
	if err != nil {
		return nil, err
	}

	var agents []models.Endpoint
	for _, ep := range raw {
		if Classify(ep) != models.EndpointAgent {
			continue
		}
		agents = append(agents, models.Endpoint{
			ID:          ep.Name,
			Name:        ep.Name,
			Description: describe(ep, models.EndpointAgent),
			Type:        models.EndpointAgent,
			IsDefault:   false,
		})
	}
	return agents, nil
}

// ListFoundationModelAPIs returns the workspace's pay-per-token
// foundation model APIs via the server-side filter.
func (c *Client) ListFoundationModelAPIs(ctx context.Context, userToken string) ([]models.Endpoint, error) {
	if !c.Configured() && userToken == "" {
		return nil, ErrNotConfigured
	}

	raw, err := c.listRaw(ctx, userToken, url.Values{"filter": {"foundation_model_apis"}})
	if err != nil {
		return nil, err
	}

	endpoints := make([]models.Endpoint, 0, len(raw))
	for _, ep := range raw {
		endpoints = append(endpoints, models.Endpoint{
			ID:          ep.Name,
			Name:        ep.Name,
			Description: "Foundation Model API: " + ep.Name,
			Type:        models.EndpointFoundation,
			IsDefault:   false,
		})
	}
	return endpoints, nil
}

// Invoke posts the message history to a named serving endpoint and
// extracts the reply text: chat-completion shape first, then the
// legacy predictions shape, then a fixed placeholder.
func (c *Client) Invoke(ctx context.Context, endpointName string, messages []ChatMessage, userToken string) (string, error) {
	if c.host == "" {
		return "", ErrNotConfigured
	}

	token, err := c.accessToken(ctx, userToken)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{"messages": messages})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	u := c.host + "/serving-endpoints/" + url.PathEscape(endpointName) + "/invocations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: invoke %s: %v", ErrUnavailable, endpointName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Warn().
			Str("endpoint", endpointName).
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Msg("serving endpoint invocation failed")
		return "", fmt.Errorf("%w: invoke %s: status %d", ErrUnavailable, endpointName, resp.StatusCode)
	}

	var body struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Predictions []string `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode invocation response: %v", ErrUnavailable, err)
	}

	if len(body.Choices) > 0 && body.Choices[0].Message.Content != "" {
		return body.Choices[0].Message.Content, nil
	}
	if len(body.Predictions) > 0 && body.Predictions[0] != "" {
		return body.Predictions[0], nil
	}
	return placeholderResponse, nil
}

func describe(ep ServingEndpoint, epType models.EndpointType) string {
	var desc string
	switch epType {
	case models.EndpointAgent:
		desc = "AI Agent: " + ep.Name
	case models.EndpointFoundation:
		desc = "Foundation model: " + ep.Name
	default:
		desc = "Custom model: " + ep.Name
	}
	if ep.State.Ready != "READY" {
		desc += " (not ready)"
	}
	return desc
}
