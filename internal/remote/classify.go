package remote

import (
	"strings"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/pkg/models"
)

// foundationKeywords are well-known foundation model family names. Any
// endpoint whose name contains one of these is classified as foundation
// unless an earlier rule already matched.
var foundationKeywords = []string{"llama", "mixtral", "dbrx", "claude", "gpt", "gemini"}

// ServingEndpoint is the raw descriptor returned by the serving
// endpoints listing API. Only the fields the classifier and listing
// code inspect are modeled.
type ServingEndpoint struct {
	Name           string              `json:"name"`
	Task           string              `json:"task,omitempty"`
	Config         ServingConfig       `json:"config,omitempty"`
	State          ServingState        `json:"state,omitempty"`
	RouteOptimized bool                `json:"route_optimized,omitempty"`
}

type ServingConfig struct {
	ServedEntities []ServedEntity `json:"served_entities,omitempty"`
}

type ServedEntity struct {
	EntityName    string         `json:"entity_name,omitempty"`
	EntityVersion string         `json:"entity_version,omitempty"`
	ExternalModel map[string]any `json:"external_model,omitempty"`
}

type ServingState struct {
	Ready string `json:"ready,omitempty"`
}

// Classify maps a raw serving endpoint descriptor to an endpoint type.
// Rule order matters: the task field is authoritative (the platform
// reports "Agent (Responses)" for agent endpoints), then served
// entities are scanned in API order, then name heuristics apply.
// Classification is keyword-driven and inherently heuristic; endpoints
// matching nothing fall through to custom.
func Classify(ep ServingEndpoint) models.EndpointType {
	name := strings.ToLower(ep.Name)

	if strings.Contains(strings.ToLower(ep.Task), "agent") {
		return models.EndpointAgent
	}

	for _, entity := range ep.Config.ServedEntities {
		if len(entity.ExternalModel) > 0 {
			return models.EndpointFoundation
		}
		if strings.Contains(strings.ToLower(entity.EntityName), "agent") {
			return models.EndpointAgent
		}
		if entity.EntityVersion != "" && strings.Contains(strings.ToLower(entity.EntityVersion), "agent") {
			return models.EndpointAgent
		}
	}

	if strings.Contains(name, "agent") {
		return models.EndpointAgent
	}

	for _, kw := range foundationKeywords {
		if strings.Contains(name, kw) {
			return models.EndpointFoundation
		}
	}

	// Route-optimized endpoints are almost always chat/LLM serving.
	if ep.RouteOptimized {
		return models.EndpointFoundation
	}

	return models.EndpointCustom
}
