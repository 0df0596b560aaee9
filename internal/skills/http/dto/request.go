// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	skillsDomain "github.com/parsivoice/pasban/internal/skills/domain"
	customValidation "github.com/parsivoice/pasban/internal/validation"
)

// RouteRequest carries one utterance for intent routing.
type RouteRequest struct {
	Text string `json:"text"`
}

// Validate checks if the route request is valid.
func (r *RouteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 2000),
		),
	)
}

// ExecuteSkillRequest carries arguments for one direct skill invocation.
// TimeoutSeconds overrides the manifest timeout when positive; it is clamped
// to the configured maximum before execution.
type ExecuteSkillRequest struct {
	Args           map[string]any `json:"args"`
	TimeoutSeconds int            `json:"timeout_seconds"`
}

// Validate checks if the execute skill request is valid.
func (r *ExecuteSkillRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TimeoutSeconds,
			validation.Min(0),
		),
	)
}

// PlanStepRequest is one entry of an ordered execution plan.
type PlanStepRequest struct {
	Skill string         `json:"skill"`
	Args  map[string]any `json:"args"`
}

// ExecutePlanRequest carries an ordered execution plan.
type ExecutePlanRequest struct {
	Steps []PlanStepRequest `json:"steps"`
}

// Validate checks if the execute plan request is valid.
func (r *ExecutePlanRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Steps,
			validation.Required,
			validation.Length(1, 20),
			validation.Each(validation.By(validatePlanStep)),
		),
	)
}

// validatePlanStep validates a single plan step.
func validatePlanStep(value interface{}) error {
	step, ok := value.(PlanStepRequest)
	if !ok {
		return validation.NewError("validation_plan_step_type", "must be a plan step")
	}

	return validation.ValidateStruct(&step,
		validation.Field(&step.Skill,
			validation.Required,
			customValidation.SkillName,
		),
	)
}

// ToPlanSteps converts the request steps to domain plan steps.
func (r *ExecutePlanRequest) ToPlanSteps() []skillsDomain.PlanStep {
	steps := make([]skillsDomain.PlanStep, 0, len(r.Steps))
	for _, step := range r.Steps {
		steps = append(steps, skillsDomain.PlanStep{
			Skill: step.Skill,
			Args:  step.Args,
		})
	}
	return steps
}
