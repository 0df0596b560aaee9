package app

import (
	"fmt"

	skillsDomain "github.com/parsivoice/pasban/internal/skills/domain"
	skillsHTTP "github.com/parsivoice/pasban/internal/skills/http"
	skillsService "github.com/parsivoice/pasban/internal/skills/service"
	skillsUseCase "github.com/parsivoice/pasban/internal/skills/usecase"
)

// SkillRouter returns the intent router over the loaded skills.
func (c *Container) SkillRouter() (skillsService.IntentRouter, error) {
	c.skillsInit.Do(func() {
		if err := c.initSkills(); err != nil {
			c.initErrors["skills"] = err
		}
	})
	if storedErr, exists := c.initErrors["skills"]; exists {
		return nil, storedErr
	}
	return c.skillRouter, nil
}

// Manifests returns the loaded skill manifests in routing order.
func (c *Container) Manifests() ([]skillsDomain.Manifest, error) {
	c.skillsInit.Do(func() {
		if err := c.initSkills(); err != nil {
			c.initErrors["skills"] = err
		}
	})
	if storedErr, exists := c.initErrors["skills"]; exists {
		return nil, storedErr
	}
	return c.manifests, nil
}

// SkillUseCase returns the skill use case.
func (c *Container) SkillUseCase() (skillsUseCase.SkillUseCase, error) {
	var err error
	c.skillUseCaseInit.Do(func() {
		c.skillUseCase, err = c.initSkillUseCase()
		if err != nil {
			c.initErrors["skillUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["skillUseCase"]; exists {
		return nil, storedErr
	}
	return c.skillUseCase, nil
}

// SkillHandler returns the HTTP handler for routing and skill execution.
func (c *Container) SkillHandler() (*skillsHTTP.SkillHandler, error) {
	var err error
	c.skillHandlerInit.Do(func() {
		c.skillHandler, err = c.initSkillHandler()
		if err != nil {
			c.initErrors["skillHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["skillHandler"]; exists {
		return nil, storedErr
	}
	return c.skillHandler, nil
}

// initSkills scans the skills directory and wraps every manifest as a
// sandboxed skill behind the intent router.
func (c *Container) initSkills() error {
	manifests, err := skillsService.LoadManifests(c.config.SkillsDir, c.Logger())
	if err != nil {
		return fmt.Errorf("failed to load skill manifests from %q: %w", c.config.SkillsDir, err)
	}

	store := c.PermissionStore()
	executor := c.SandboxExecutor()

	skills := make([]skillsDomain.Skill, 0, len(manifests))
	for _, manifest := range manifests {
		skills = append(skills, skillsService.NewSandboxSkill(manifest, store, executor))
	}

	c.manifests = manifests
	c.skillRouter = skillsService.NewIntentRouter(skills)
	return nil
}

// initSkillUseCase creates the skill use case with all its dependencies.
func (c *Container) initSkillUseCase() (skillsUseCase.SkillUseCase, error) {
	router, err := c.SkillRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to get skill router for skill use case: %w", err)
	}

	manifests, err := c.Manifests()
	if err != nil {
		return nil, fmt.Errorf("failed to get manifests for skill use case: %w", err)
	}

	recorder, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for skill use case: %w", err)
	}

	baseUseCase := skillsUseCase.NewSkillUseCase(router, manifests, recorder, c.config.SandboxMaxTimeout)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		securityMetrics, err := c.SecurityMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get security metrics for skill use case: %w", err)
		}
		return skillsUseCase.NewSkillUseCaseWithMetrics(baseUseCase, securityMetrics), nil
	}

	return baseUseCase, nil
}

// initSkillHandler creates the skill HTTP handler.
func (c *Container) initSkillHandler() (*skillsHTTP.SkillHandler, error) {
	skillUseCase, err := c.SkillUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get skill use case for skill handler: %w", err)
	}

	return skillsHTTP.NewSkillHandler(skillUseCase, c.Logger()), nil
}
