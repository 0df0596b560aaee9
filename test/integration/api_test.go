// Package integration provides end-to-end integration tests for the security
// layer API: session issuance, routing, sandboxed execution, permissions,
// rate limiting and the audit trail, all against a fully assembled container.
package integration

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsivoice/pasban/internal/app"
	auditDTO "github.com/parsivoice/pasban/internal/audit/http/dto"
	authDTO "github.com/parsivoice/pasban/internal/auth/http/dto"
	"github.com/parsivoice/pasban/internal/config"
	permissionDTO "github.com/parsivoice/pasban/internal/permission/http/dto"
	skillsDTO "github.com/parsivoice/pasban/internal/skills/http/dto"
)

// Plain keys for the fixture credential file. Only their digests are written
// to disk, mirroring production setup.
const (
	rootKey = "itg-root-7c41e95b2af08d63"
	userKey = "itg-user-9b3fd8a704c1e256"
	demoKey = "itg-demo-50e7a1c98b4d2f37"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	server    *httptest.Server
	rootToken string
	userToken string
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// issueSession issues a session token through the API and requires success.
func (ctx *integrationTestContext) issueSession(t *testing.T, key string) string {
	t.Helper()

	resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/session",
		map[string]string{"key": key}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "session issuance failed: %s", body)

	var session authDTO.IssueSessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

// writeIntegrationCredentials writes the fixture credential table: one
// credential per tier plus a tightened demo rate limit.
func writeIntegrationCredentials(t *testing.T, path string) {
	t.Helper()

	digest := func(key string) string {
		sum := sha256.Sum256([]byte(key))
		return hex.EncodeToString(sum[:])
	}

	content := fmt.Sprintf(`credentials:
  - id: integration-root
    key_digest: %s
    tier: admin
  - id: assistant-ui
    key_digest: %s
    tier: user
    permissions:
      - speak
      - system.status
  - id: showcase
    key_digest: %s
    tier: demo
tiers:
  demo:
    limit: 3
`, digest(rootKey), digest(userKey), digest(demoKey))

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// writeIntegrationSkills writes two runnable skill manifests. disk-report
// succeeds because df accepts the payload file path as an operand;
// speak-time always fails because date rejects it, which exercises the
// failure surface with a real child process.
func writeIntegrationSkills(t *testing.T, skillsDir string) {
	t.Helper()

	manifests := map[string]string{
		"disk-report": `name: disk-report
description: گزارش فضای آزاد دیسک
command: ["df", "-h"]
triggers: ["فضای دیسک", "disk space"]
permission: system.status
timeout_seconds: 5
priority: 5
`,
		"speak-time": `name: speak-time
description: اعلام ساعت فعلی
command: ["date", "+%H:%M"]
triggers: ["ساعت چند", "current time"]
permission: speak
timeout_seconds: 5
priority: 10
`,
	}

	for name, manifest := range manifests {
		dir := filepath.Join(skillsDir, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "skill.yaml"), []byte(manifest), 0o644))
	}
}

// integrationConfig returns a configuration pointing every file path into dir.
func integrationConfig(dir string) *config.Config {
	return &config.Config{
		ServerHost: "localhost",
		ServerPort: 8080,

		LogLevel:  "error",
		LogFormat: "text",

		CredentialFile: filepath.Join(dir, "credentials.yaml"),
		SkillsDir:      filepath.Join(dir, "skills"),
		PermissionFile: filepath.Join(dir, "permissions.json"),
		StateDir:       filepath.Join(dir, "state"),

		SessionTokenExpiration: time.Hour,
		MinCredentialLength:    16,

		RateLimitWindow: time.Hour,
		RateLimitAdmin:  1000,
		RateLimitUser:   100,
		RateLimitLocal:  200,
		RateLimitDemo:   50,

		ReputationFailureWindow:  time.Hour,
		ReputationShortThreshold: 3,
		ReputationShortBlock:     15 * time.Minute,
		ReputationLongThreshold:  10,
		ReputationLongBlock:      30 * time.Minute,

		SandboxDefaultTimeout: 5 * time.Second,
		SandboxMaxTimeout:     30 * time.Second,

		EventLogCapacity: 100,

		RateLimitSessionEnabled:        true,
		RateLimitSessionRequestsPerSec: 100,
		RateLimitSessionBurst:          100,

		MetricsEnabled:   false,
		MetricsNamespace: "pasban",
		MetricsPort:      8081,
	}
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T) *integrationTestContext {
	t.Helper()

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := integrationConfig(dir)
	writeIntegrationCredentials(t, cfg.CredentialFile)
	writeIntegrationSkills(t, cfg.SkillsDir)

	// Create DI container and assemble the full router
	container := app.NewContainer(cfg)

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil after router setup")

	testServer := httptest.NewServer(handler)

	ctx := &integrationTestContext{
		container: container,
		server:    testServer,
	}

	// Issue one session per identity through the public endpoint
	ctx.rootToken = ctx.issueSession(t, rootKey)
	ctx.userToken = ctx.issueSession(t, userKey)

	t.Logf("Integration test setup complete (server=%s)", testServer.URL)
	return ctx
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}
}

// grantPermission grants a permission through the admin API.
func (ctx *integrationTestContext) grantPermission(t *testing.T, name string) {
	t.Helper()

	resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/permissions/"+name+"/grant", nil, ctx.rootToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, "grant failed: %s", body)
}

// TestIntegration_Health_BasicChecks validates the health and readiness
// endpoints of a container running without an audit archive.
func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	t.Run("01_HealthCheck", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/healthz", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "healthy", response["status"])
	})

	t.Run("02_ReadinessCheck", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/readyz", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response struct {
			Status     string            `json:"status"`
			Components map[string]string `json:"components"`
		}
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "ready", response.Status)
		assert.Equal(t, "disabled", response.Components["database"])
	})

	t.Run("03_RequestIDHeader", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/healthz", nil, "")
		assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	})
}

// TestIntegration_Session_Flow validates session issuance and token
// authentication against every rejection path.
func TestIntegration_Session_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	t.Run("01_IssueSessionPerTier", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/session",
			map[string]string{"key": rootKey}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var session authDTO.IssueSessionResponse
		require.NoError(t, json.Unmarshal(body, &session))
		assert.Equal(t, "admin", session.Tier)
		assert.True(t, session.ExpiresAt.After(time.Now()))
	})

	t.Run("02_RejectUnknownKey", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/session",
			map[string]string{"key": "itg-nobody-00112233445566"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "unauthorized", response["error"])
	})

	t.Run("03_RejectBlankKey", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/session",
			map[string]string{"key": ""}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("04_AuthenticatedRequest", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/skills", nil, ctx.userToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"))
	})

	t.Run("05_RejectMissingToken", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/skills", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("06_RejectTamperedToken", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/skills", nil, ctx.userToken+"x")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "unauthorized", response["error"])
	})
}

// TestIntegration_Skills_Flow walks the whole skill surface: listing,
// permission enforcement, sandboxed execution, routing and admin grants.
func TestIntegration_Skills_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	t.Run("01_ListSkills", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/skills", nil, ctx.userToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response skillsDTO.ListSkillsResponse
		require.NoError(t, json.Unmarshal(body, &response))
		require.Len(t, response.Data, 2)

		// Ordered by priority, highest first
		assert.Equal(t, "speak-time", response.Data[0].Name)
		assert.Equal(t, "disk-report", response.Data[1].Name)
		assert.Equal(t, "system.status", response.Data[1].Permission)
	})

	t.Run("02_ExecuteDeniedWithoutGrant", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/skills/disk-report/execute",
			skillsDTO.ExecuteSkillRequest{}, ctx.userToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "forbidden", response["error"])
	})

	t.Run("03_UserCannotGrant", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/permissions/system.status/grant",
			nil, ctx.userToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("04_AdminGrant", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/permissions/system.status/grant",
			nil, ctx.rootToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var grant permissionDTO.GrantResponse
		require.NoError(t, json.Unmarshal(body, &grant))
		assert.Equal(t, "system.status", grant.Name)
		assert.True(t, grant.Granted)
	})

	t.Run("05_CheckGranted", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/permissions/system.status",
			nil, ctx.userToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var grant permissionDTO.GrantResponse
		require.NoError(t, json.Unmarshal(body, &grant))
		assert.True(t, grant.Granted)
	})

	t.Run("06_ExecuteSkill", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/skills/disk-report/execute",
			skillsDTO.ExecuteSkillRequest{}, ctx.userToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, "execute failed: %s", body)

		var response skillsDTO.SkillResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "disk-report", response.Skill)
		assert.NotEmpty(t, response.Reply)
		assert.Equal(t, "completed", response.Invocation.Status)
		assert.Equal(t, 0, response.Invocation.ExitCode)
	})

	t.Run("07_RouteMatchedUtterance", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/route",
			skillsDTO.RouteRequest{Text: "چقدر فضای دیسک آزاد داریم؟"}, ctx.userToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, "route failed: %s", body)

		var response skillsDTO.RouteResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.True(t, response.Matched)
		assert.Equal(t, "disk-report", response.Skill)
		require.NotNil(t, response.Response)
		assert.NotEmpty(t, response.Response.Reply)
	})

	t.Run("08_RouteUnmatchedUtterance", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/route",
			skillsDTO.RouteRequest{Text: "چراغ های پذیرایی را روشن کن"}, ctx.userToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response skillsDTO.RouteResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.False(t, response.Matched)
		assert.Nil(t, response.Response)
	})

	t.Run("09_ExecuteUnknownSkill", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/skills/missing-skill/execute",
			skillsDTO.ExecuteSkillRequest{}, ctx.userToken)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "not_found", response["error"])
	})

	t.Run("10_ExecuteFailingSkill", func(t *testing.T) {
		ctx.grantPermission(t, "speak")

		// date rejects the payload file operand, so the child exits non-zero
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/skills/speak-time/execute",
			skillsDTO.ExecuteSkillRequest{}, ctx.userToken)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "skill_failed", response["error"])
	})

	t.Run("11_RevokeRestoresDenial", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/permissions/system.status/revoke",
			nil, ctx.rootToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var grant permissionDTO.GrantResponse
		require.NoError(t, json.Unmarshal(body, &grant))
		assert.False(t, grant.Granted)

		resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/skills/disk-report/execute",
			skillsDTO.ExecuteSkillRequest{}, ctx.userToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

// TestIntegration_Plan_Flow validates ordered plan execution with a mix of
// succeeding and failing steps.
func TestIntegration_Plan_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	ctx.grantPermission(t, "system.status")
	ctx.grantPermission(t, "speak")

	t.Run("01_MixedPlan", func(t *testing.T) {
		plan := skillsDTO.ExecutePlanRequest{
			Steps: []skillsDTO.PlanStepRequest{
				{Skill: "speak-time"},
				{Skill: "disk-report"},
				{Skill: "missing-skill"},
			},
		}

		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/plan", plan, ctx.userToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, "plan failed: %s", body)

		var response skillsDTO.ExecutePlanResponse
		require.NoError(t, json.Unmarshal(body, &response))
		require.Len(t, response.Steps, 3)

		// speak-time fails inside the sandbox, the failure is captured
		assert.Equal(t, "speak-time", response.Steps[0].Skill)
		assert.NotEmpty(t, response.Steps[0].Error)
		assert.Nil(t, response.Steps[0].Response)

		// disk-report succeeds
		assert.Equal(t, "disk-report", response.Steps[1].Skill)
		assert.Empty(t, response.Steps[1].Error)
		require.NotNil(t, response.Steps[1].Response)
		assert.NotEmpty(t, response.Steps[1].Response.Reply)

		// unknown skills fail their step without aborting the plan
		assert.Equal(t, "missing-skill", response.Steps[2].Skill)
		assert.NotEmpty(t, response.Steps[2].Error)
	})

	t.Run("02_EmptyPlanRejected", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/plan",
			skillsDTO.ExecutePlanRequest{}, ctx.userToken)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

// TestIntegration_RateLimit_Flow validates the per-tier sliding window using
// the tightened demo limit from the fixture credential file.
func TestIntegration_RateLimit_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	demoToken := ctx.issueSession(t, demoKey)

	t.Run("01_WithinLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/skills", nil, demoToken)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "3", resp.Header.Get("X-RateLimit-Limit"))
		}
	})

	t.Run("02_OverLimit", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/skills", nil, demoToken)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "rate_limited", response["error"])
	})

	t.Run("03_OtherTierUnaffected", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/skills", nil, ctx.userToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

// TestIntegration_IPReputation_Flow validates that repeated credential
// failures from one address block even valid keys.
func TestIntegration_IPReputation_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	t.Run("01_FailuresBelowThreshold", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/session",
				map[string]string{"key": "itg-wrong-key-0a1b2c3d4e5f66"}, "")
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		}
	})

	t.Run("02_ThresholdTriggersBlock", func(t *testing.T) {
		// The third failure crosses the threshold, so this request is already
		// answered with the block.
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/session",
			map[string]string{"key": "itg-wrong-key-0a1b2c3d4e5f66"}, "")
		assert.Equal(t, http.StatusLocked, resp.StatusCode)

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "address_blocked", response["error"])
	})

	t.Run("03_ValidKeyBlockedToo", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/session",
			map[string]string{"key": userKey}, "")
		assert.Equal(t, http.StatusLocked, resp.StatusCode)

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "address_blocked", response["error"])
	})
}

// TestIntegration_Audit_Flow validates that enforcement outcomes land in the
// event log and that access to it is tier-gated.
func TestIntegration_Audit_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	// Produce one failure of each interesting kind
	resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/session",
		map[string]string{"key": "itg-wrong-key-0a1b2c3d4e5f66"}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/skills/disk-report/execute",
		skillsDTO.ExecuteSkillRequest{}, ctx.userToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	t.Run("01_EventsRequireAdmin", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/audit/events", nil, ctx.userToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("02_EventsNewestFirst", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/audit/events?limit=50", nil, ctx.rootToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response auditDTO.ListEventsResponse
		require.NoError(t, json.Unmarshal(body, &response))
		require.NotEmpty(t, response.Data)

		types := make(map[string]bool, len(response.Data))
		for _, event := range response.Data {
			assert.NotEmpty(t, event.ID)
			assert.False(t, event.CreatedAt.IsZero())
			types[event.Type] = true
		}
		assert.True(t, types["auth_success"], "expected auth_success events")
		assert.True(t, types["auth_failure"], "expected an auth_failure event")
		assert.True(t, types["permission_denied"], "expected a permission_denied event")

		for i := 1; i < len(response.Data); i++ {
			assert.False(t, response.Data[i-1].CreatedAt.Before(response.Data[i].CreatedAt),
				"events must be ordered newest first")
		}
	})

	t.Run("03_Summary", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/audit/summary", nil, ctx.userToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var summary auditDTO.SummaryResponse
		require.NoError(t, json.Unmarshal(body, &summary))
		assert.Equal(t, 100, summary.RingCapacity)
		assert.Greater(t, summary.TotalRecorded, int64(0))
		assert.Greater(t, summary.CountsByType["auth_failure"], int64(0))
		assert.False(t, summary.GeneratedAt.IsZero())
	})
}
