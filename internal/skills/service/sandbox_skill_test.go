package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/parsivoice/pasban/internal/errors"
	sandboxDomain "github.com/parsivoice/pasban/internal/sandbox/domain"
	"github.com/parsivoice/pasban/internal/skills/domain"
)

type fakeGrants struct {
	granted map[string]bool
}

func (f *fakeGrants) IsGranted(name string) bool {
	return f.granted[name]
}

type fakeExecutor struct {
	called     bool
	invocation sandboxDomain.Invocation
	result     sandboxDomain.InvocationResult
	err        error
}

func (f *fakeExecutor) Execute(_ context.Context, inv sandboxDomain.Invocation) (sandboxDomain.InvocationResult, error) {
	f.called = true
	f.invocation = inv
	return f.result, f.err
}

func weatherSkillManifest() domain.Manifest {
	return domain.Manifest{
		Name:           "weather",
		Command:        []string{"espeak", "-v", "fa", "${text}"},
		Triggers:       []string{"هوا", "weather"},
		Permission:     "network.weather",
		TimeoutSeconds: 10,
		Dir:            "/srv/pasban/skills/weather",
		Env:            map[string]string{"WEATHER_REGION": "ir"},
	}
}

func newWeatherSkill(executor *fakeExecutor) domain.Skill {
	grants := &fakeGrants{granted: map[string]bool{"network.weather": true}}
	return NewSandboxSkill(weatherSkillManifest(), grants, executor)
}

func TestSandboxSkill_Identity(t *testing.T) {
	skill := newWeatherSkill(&fakeExecutor{})

	assert.Equal(t, "weather", skill.Name())
	assert.True(t, skill.CanHandle("هوای امروز"))
	assert.False(t, skill.CanHandle("چراغ را خاموش کن"))
}

func TestSandboxSkill_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ExpandsCommandAndExtractsReply", func(t *testing.T) {
		executor := &fakeExecutor{
			result: sandboxDomain.InvocationResult{
				Skill:  "weather",
				Status: sandboxDomain.StatusCompleted,
				Stdout: `{"reply":"آفتابی است","temperature":28}`,
			},
		}
		skill := newWeatherSkill(executor)

		response, err := skill.Handle(ctx, domain.Request{
			Text: "هوا چطوره؟",
			Args: map[string]any{"text": "هوا"},
		})

		require.NoError(t, err)
		assert.Equal(t, "weather", response.Skill)
		assert.Equal(t, "آفتابی است", response.Reply)
		assert.Equal(t, sandboxDomain.StatusCompleted, response.Invocation.Status)

		require.True(t, executor.called)
		assert.Equal(t, []string{"espeak", "-v", "fa", "هوا"}, executor.invocation.Argv)
		assert.Equal(t, "weather", executor.invocation.Skill)
		assert.Equal(t, "/srv/pasban/skills/weather", executor.invocation.WorkDir)
		assert.Equal(t, map[string]string{"WEATHER_REGION": "ir"}, executor.invocation.Env)
		assert.Equal(t, 10*time.Second, executor.invocation.Timeout)
		assert.Equal(t, "هوا چطوره؟", executor.invocation.Payload["text"])
		assert.Equal(t, map[string]any{"text": "هوا"}, executor.invocation.Payload["args"])
	})

	t.Run("Success_PlainTextStdoutBecomesReply", func(t *testing.T) {
		executor := &fakeExecutor{
			result: sandboxDomain.InvocationResult{Status: sandboxDomain.StatusCompleted, Stdout: "sunny today\n"},
		}
		skill := newWeatherSkill(executor)

		response, err := skill.Handle(ctx, domain.Request{Text: "weather"})

		require.NoError(t, err)
		assert.Equal(t, "sunny today", response.Reply)
	})

	t.Run("Success_JSONWithoutReplyFieldFallsBackToRaw", func(t *testing.T) {
		executor := &fakeExecutor{
			result: sandboxDomain.InvocationResult{Status: sandboxDomain.StatusCompleted, Stdout: `{"status":"ok"}`},
		}
		skill := newWeatherSkill(executor)

		response, err := skill.Handle(ctx, domain.Request{Text: "weather"})

		require.NoError(t, err)
		assert.Equal(t, `{"status":"ok"}`, response.Reply)
	})

	t.Run("Success_RequestTimeoutOverridesManifest", func(t *testing.T) {
		executor := &fakeExecutor{
			result: sandboxDomain.InvocationResult{Status: sandboxDomain.StatusCompleted},
		}
		skill := newWeatherSkill(executor)

		_, err := skill.Handle(ctx, domain.Request{Text: "weather", Timeout: 3 * time.Second})

		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, executor.invocation.Timeout)
	})

	t.Run("Success_WildcardCallerPasses", func(t *testing.T) {
		executor := &fakeExecutor{
			result: sandboxDomain.InvocationResult{Status: sandboxDomain.StatusCompleted},
		}
		skill := newWeatherSkill(executor)

		_, err := skill.Handle(ctx, domain.Request{Text: "weather", Permissions: []string{"*"}})

		require.NoError(t, err)
		assert.True(t, executor.called)
	})

	t.Run("Error_CallerLacksPermission", func(t *testing.T) {
		executor := &fakeExecutor{}
		skill := newWeatherSkill(executor)

		_, err := skill.Handle(ctx, domain.Request{
			Text:        "weather",
			Permissions: []string{"speak"},
		})

		require.Error(t, err)
		var denied *domain.PermissionDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, "weather", denied.Skill)
		assert.Equal(t, "network.weather", denied.Permission)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.False(t, executor.called)
	})

	t.Run("Error_PermissionNotGranted", func(t *testing.T) {
		executor := &fakeExecutor{}
		skill := NewSandboxSkill(weatherSkillManifest(), &fakeGrants{granted: map[string]bool{}}, executor)

		_, err := skill.Handle(ctx, domain.Request{Text: "weather"})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.False(t, executor.called)
	})

	t.Run("Error_ExecutorFailurePropagatesWithInvocation", func(t *testing.T) {
		executor := &fakeExecutor{
			result: sandboxDomain.InvocationResult{Status: sandboxDomain.StatusFailed, ExitCode: 3},
			err:    &sandboxDomain.SandboxExecutionError{Skill: "weather", ExitCode: 3, Stderr: "boom"},
		}
		skill := newWeatherSkill(executor)

		response, err := skill.Handle(ctx, domain.Request{Text: "weather"})

		require.Error(t, err)
		var execErr *sandboxDomain.SandboxExecutionError
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, sandboxDomain.StatusFailed, response.Invocation.Status)
		assert.Empty(t, response.Reply)
	})
}
