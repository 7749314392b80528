package admin

import (
	"context"
	"net/http"
	"time"
)

// operation describes one fixed admin endpoint. The timeouts are part of
// the platform's documented admin API contract and are not configurable.
type operation struct {
	name    string
	method  string
	path    string
	timeout time.Duration
}

var (
	opPing = operation{
		name:    "ping",
		method:  http.MethodGet,
		path:    "/api/admin/ping",
		timeout: 10 * time.Second,
	}
	opHealthCheck = operation{
		name:    "health_check",
		method:  http.MethodGet,
		path:    "/api/admin/health",
		timeout: 30 * time.Second,
	}
	opSystemInfo = operation{
		name:    "system_info",
		method:  http.MethodGet,
		path:    "/api/admin/info",
		timeout: 15 * time.Second,
	}
	opDeployIntegration = operation{
		name:    "deploy_integration",
		method:  http.MethodPost,
		path:    "/api/admin/integrations/deploy",
		timeout: 60 * time.Second,
	}
	opExecuteMigration = operation{
		name:    "execute_migration",
		method:  http.MethodPost,
		path:    "/api/admin/migrations/execute",
		timeout: 120 * time.Second,
	}
)

// Ping tests connectivity to a platform instance.
func (c *Client) Ping(ctx context.Context, instanceURL string) Result {
	return c.do(ctx, opPing, instanceURL, nil)
}

// HealthCheck fetches the comprehensive health status of an instance,
// including the client summary consumed by fleet reports.
func (c *Client) HealthCheck(ctx context.Context, instanceURL string) Result {
	return c.do(ctx, opHealthCheck, instanceURL, nil)
}

// SystemInfo fetches system information and database status from an
// instance.
func (c *Client) SystemInfo(ctx context.Context, instanceURL string) Result {
	return c.do(ctx, opSystemInfo, instanceURL, nil)
}

// DeployIntegration deploys or updates an integration on an instance.
// config is serialized as the JSON request body exactly as given; pass a
// json.RawMessage to forward a prebuilt document unchanged.
func (c *Client) DeployIntegration(ctx context.Context, instanceURL string, config any) Result {
	return c.do(ctx, opDeployIntegration, instanceURL, config)
}

// ExecuteMigration runs a database migration on an instance. config is
// serialized as the JSON request body exactly as given.
func (c *Client) ExecuteMigration(ctx context.Context, instanceURL string, config any) Result {
	return c.do(ctx, opExecuteMigration, instanceURL, config)
}
