package service

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	sandboxDomain "github.com/parsivoice/pasban/internal/sandbox/domain"
	sandboxService "github.com/parsivoice/pasban/internal/sandbox/service"
	"github.com/parsivoice/pasban/internal/skills/domain"
)

// sandboxSkill adapts one manifest into the Skill capability: it enforces the
// manifest's permission, expands the command vector and hands it to the
// sandbox executor.
type sandboxSkill struct {
	manifest domain.Manifest
	grants   PermissionChecker
	executor sandboxService.SkillSandboxExecutor
}

// NewSandboxSkill wraps a manifest as a routable skill.
func NewSandboxSkill(
	manifest domain.Manifest,
	grants PermissionChecker,
	executor sandboxService.SkillSandboxExecutor,
) domain.Skill {
	return &sandboxSkill{
		manifest: manifest,
		grants:   grants,
		executor: executor,
	}
}

func (s *sandboxSkill) Name() string {
	return s.manifest.Name
}

func (s *sandboxSkill) CanHandle(text string) bool {
	return s.manifest.MatchesTrigger(text)
}

func (s *sandboxSkill) Handle(ctx context.Context, req domain.Request) (domain.Response, error) {
	response := domain.Response{Skill: s.manifest.Name}

	if !req.Allows(s.manifest.Permission) || !s.grants.IsGranted(s.manifest.Permission) {
		return response, &domain.PermissionDeniedError{
			Skill:      s.manifest.Name,
			Permission: s.manifest.Permission,
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.manifest.Timeout()
	}

	result, err := s.executor.Execute(ctx, sandboxDomain.Invocation{
		Skill:        s.manifest.Name,
		Argv:         s.manifest.ExpandCommand(req.Args),
		Payload:      payloadFor(req),
		Timeout:      timeout,
		WorkDir:      s.manifest.Dir,
		Env:          s.manifest.Env,
		BinarySHA256: s.manifest.BinarySHA256,
	})
	response.Invocation = result
	if err != nil {
		return response, err
	}

	response.Reply = extractReply(result.Stdout)
	return response, nil
}

// payloadFor builds the JSON document the skill process reads from the
// payload file.
func payloadFor(req domain.Request) map[string]any {
	payload := map[string]any{}
	if req.Text != "" {
		payload["text"] = req.Text
	}
	if len(req.Args) > 0 {
		payload["args"] = req.Args
	}
	return payload
}

// extractReply pulls the "reply" field from JSON skill output. Skills that
// print plain text get their trimmed stdout back unchanged.
func extractReply(stdout string) string {
	trimmed := strings.TrimSpace(stdout)
	if gjson.Valid(trimmed) {
		if reply := gjson.Get(trimmed, "reply"); reply.Exists() {
			return reply.String()
		}
	}
	return trimmed
}
