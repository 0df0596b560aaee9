// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	skillsDomain "github.com/parsivoice/pasban/internal/skills/domain"
)

// InvocationResponse describes the sandbox outcome of one skill run.
type InvocationResponse struct {
	Status     string `json:"status"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
}

// SkillResponse represents a completed skill invocation in API responses.
type SkillResponse struct {
	Skill      string             `json:"skill"`
	Reply      string             `json:"reply"`
	Invocation InvocationResponse `json:"invocation"`
}

// MapSkillResponse converts a domain skill response to an API response.
func MapSkillResponse(response skillsDomain.Response) SkillResponse {
	return SkillResponse{
		Skill: response.Skill,
		Reply: response.Reply,
		Invocation: InvocationResponse{
			Status:     string(response.Invocation.Status),
			ExitCode:   response.Invocation.ExitCode,
			DurationMS: response.Invocation.Duration.Milliseconds(),
		},
	}
}

// RouteResponse is the outcome of routing one utterance. Response is present
// only when a skill matched.
type RouteResponse struct {
	Matched  bool           `json:"matched"`
	Skill    string         `json:"skill,omitempty"`
	Response *SkillResponse `json:"response,omitempty"`
}

// MapRouteResultToResponse converts a domain route result to an API response.
func MapRouteResultToResponse(result skillsDomain.RouteResult) RouteResponse {
	response := RouteResponse{
		Matched: result.Matched,
		Skill:   result.Skill,
	}
	if result.Matched {
		mapped := MapSkillResponse(result.Response)
		response.Response = &mapped
	}
	return response
}

// PlanStepResponse is the captured outcome of one plan step. Exactly one of
// Response and Error is set.
type PlanStepResponse struct {
	Skill    string         `json:"skill"`
	Args     map[string]any `json:"args,omitempty"`
	Response *SkillResponse `json:"response,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ExecutePlanResponse holds one result per plan step, in plan order.
type ExecutePlanResponse struct {
	Steps []PlanStepResponse `json:"steps"`
}

// MapStepResultsToResponse converts domain step results to an API response.
func MapStepResultsToResponse(results []skillsDomain.StepResult) ExecutePlanResponse {
	steps := make([]PlanStepResponse, 0, len(results))
	for _, result := range results {
		step := PlanStepResponse{
			Skill: result.Skill,
			Args:  result.Args,
		}
		if result.Err != nil {
			step.Error = result.Err.Error()
		} else {
			mapped := MapSkillResponse(result.Response)
			step.Response = &mapped
		}
		steps = append(steps, step)
	}
	return ExecutePlanResponse{Steps: steps}
}

// ManifestResponse describes one loaded skill. Command vectors and binary
// digests stay internal.
type ManifestResponse struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Triggers       []string `json:"triggers,omitempty"`
	Permission     string   `json:"permission,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
}

// ListSkillsResponse represents the loaded skill list in API responses.
type ListSkillsResponse struct {
	Data []ManifestResponse `json:"data"`
}

// MapManifestsToListResponse converts domain manifests to a list API response.
func MapManifestsToListResponse(manifests []skillsDomain.Manifest) ListSkillsResponse {
	data := make([]ManifestResponse, 0, len(manifests))
	for _, manifest := range manifests {
		data = append(data, ManifestResponse{
			Name:           manifest.Name,
			Description:    manifest.Description,
			Triggers:       manifest.Triggers,
			Permission:     manifest.Permission,
			TimeoutSeconds: manifest.TimeoutSeconds,
		})
	}
	return ListSkillsResponse{Data: data}
}
