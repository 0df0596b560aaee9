package app

import (
	sandboxService "github.com/parsivoice/pasban/internal/sandbox/service"
)

// CommandValidator returns the allow-list command validator.
func (c *Container) CommandValidator() sandboxService.CommandValidator {
	c.commandValidatorInit.Do(func() {
		c.commandValidator = sandboxService.NewCommandValidator(sandboxService.DefaultAllowedExecutables())
	})
	return c.commandValidator
}

// SandboxExecutor returns the sandboxed skill process executor.
func (c *Container) SandboxExecutor() sandboxService.SkillSandboxExecutor {
	c.sandboxExecutorInit.Do(func() {
		c.sandboxExecutor = sandboxService.NewSkillSandboxExecutor(
			c.CommandValidator(),
			c.config.SandboxDefaultTimeout,
		)
	})
	return c.sandboxExecutor
}
