// Package demo runs the canned demonstration scenarios: a multi-instance
// health report, a fleet-wide integration deployment and a single-instance
// database migration, printed as a plain-text report.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/msplatform/mspadm/pkg/admin"
)

// DefaultInstances are the example customer deployments targeted when no
// fleet is supplied.
var DefaultInstances = []string{
	"https://acme-corp.msplatform.com",
	"https://techstart-inc.msplatform.com",
	"https://globalservices.msplatform.com",
}

// Options configures a demonstration run.
type Options struct {
	Client    *admin.Client
	Instances []string  // defaults to DefaultInstances
	Out       io.Writer // defaults to os.Stdout
}

// integrationConfig is the example integration rolled out by the
// deployment scenario.
type integrationConfig struct {
	IntegrationName string         `json:"integrationName"`
	Version         string         `json:"version"`
	Description     string         `json:"description"`
	DefaultConfig   map[string]any `json:"defaultConfig"`
}

// migrationConfig is the example migration run by the migration scenario.
type migrationConfig struct {
	MigrationID        string   `json:"migrationId"`
	Description        string   `json:"description"`
	TargetDatabases    string   `json:"targetDatabases"`
	SQLStatements      []string `json:"sqlStatements"`
	RollbackStatements []string `json:"rollbackStatements"`
}

// healthEnvelope is the health response shape the report consumes. The
// pointer distinguishes instances that answer 2xx without the expected
// summary from instances reporting zero clients.
type healthEnvelope struct {
	Data struct {
		Summary *struct {
			SystemStatus string `mapstructure:"systemStatus"`
			TotalClients int    `mapstructure:"totalClients"`
		} `mapstructure:"summary"`
	} `mapstructure:"data"`
}

// resultsEnvelope is the deploy and migration response shape used for
// success ratios.
type resultsEnvelope struct {
	Data struct {
		Results *[]struct {
			Status string `mapstructure:"status"`
		} `mapstructure:"results"`
	} `mapstructure:"data"`
}

// Run executes the three demonstration scenarios in order and writes the
// report to opts.Out. Per-instance admin failures are part of the report,
// not errors; a failing instance never interrupts the run.
func Run(ctx context.Context, opts Options) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	instances := opts.Instances
	if len(instances) == 0 {
		instances = DefaultInstances
	}

	fmt.Fprintln(out, "=== Multi-Instance Health Check ===")
	health := opts.Client.BulkHealthCheck(ctx, instances)
	for _, entry := range health.Entries() {
		fmt.Fprintln(out, healthLine(entry))
	}

	fmt.Fprintln(out, "\n=== Integration Deployment Example ===")
	deploys := opts.Client.BulkDeployIntegration(ctx, instances, exampleIntegration())
	for _, entry := range deploys.Entries() {
		fmt.Fprintln(out, deployLine(entry))
	}

	fmt.Fprintln(out, "\n=== Migration Example ===")
	migration := opts.Client.ExecuteMigration(ctx, instances[0], exampleMigration())
	fmt.Fprintln(out, migrationLine(migration))
}

func healthLine(entry admin.BulkEntry) string {
	if !entry.Result.OK() {
		return fmt.Sprintf("%s: ERROR - %s", entry.Instance, entry.Result.Err)
	}
	var env healthEnvelope
	if err := entry.Result.DecodeData(&env); err != nil {
		return fmt.Sprintf("%s: ERROR - %v", entry.Instance, err)
	}
	if env.Data.Summary == nil {
		return fmt.Sprintf("%s: ERROR - health response missing data.summary", entry.Instance)
	}
	return fmt.Sprintf("%s: %s (%d clients)", entry.Instance, env.Data.Summary.SystemStatus, env.Data.Summary.TotalClients)
}

func deployLine(entry admin.BulkEntry) string {
	if !entry.Result.OK() {
		return fmt.Sprintf("%s: DEPLOYMENT FAILED - %s", entry.Instance, entry.Result.Err)
	}
	succeeded, total, err := successRatio(entry.Result)
	if err != nil {
		return fmt.Sprintf("%s: DEPLOYMENT FAILED - %v", entry.Instance, err)
	}
	return fmt.Sprintf("%s: %d/%d clients updated", entry.Instance, succeeded, total)
}

func migrationLine(res admin.Result) string {
	if !res.OK() {
		return fmt.Sprintf("Migration failed: %s", res.Err)
	}
	succeeded, total, err := successRatio(res)
	if err != nil {
		return fmt.Sprintf("Migration failed: %v", err)
	}
	return fmt.Sprintf("Migration executed: %d/%d databases updated", succeeded, total)
}

// successRatio counts "success" entries in the response's data.results.
func successRatio(res admin.Result) (succeeded, total int, err error) {
	var env resultsEnvelope
	if err := res.DecodeData(&env); err != nil {
		return 0, 0, err
	}
	if env.Data.Results == nil {
		return 0, 0, errors.New("response missing data.results")
	}
	for _, r := range *env.Data.Results {
		if r.Status == "success" {
			succeeded++
		}
	}
	return succeeded, len(*env.Data.Results), nil
}

func exampleIntegration() integrationConfig {
	return integrationConfig{
		IntegrationName: "enhanced-security-monitoring",
		Version:         "2.1.0",
		Description:     "Enhanced security monitoring with AI threat detection",
		DefaultConfig: map[string]any{
			"enabled":           true,
			"aiThreatDetection": true,
			"alertThreshold":    "medium",
			"reportingInterval": "hourly",
		},
	}
}

func exampleMigration() migrationConfig {
	return migrationConfig{
		MigrationID:     "security_enhancement_v2.1.0",
		Description:     "Add enhanced security tracking tables",
		TargetDatabases: "clients",
		SQLStatements: []string{
			"ALTER TABLE integrations ADD COLUMN IF NOT EXISTS security_score INTEGER DEFAULT 100",
			"ALTER TABLE integrations ADD COLUMN IF NOT EXISTS last_security_scan TIMESTAMP",
			"CREATE INDEX IF NOT EXISTS idx_integrations_security_score ON integrations(security_score)",
		},
		RollbackStatements: []string{
			"ALTER TABLE integrations DROP COLUMN IF EXISTS security_score",
			"ALTER TABLE integrations DROP COLUMN IF EXISTS last_security_scan",
			"DROP INDEX IF EXISTS idx_integrations_security_score",
		},
	}
}
