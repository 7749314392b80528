// Package cli implements the mspadm command line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/msplatform/mspadm/pkg/admin"
	"github.com/msplatform/mspadm/pkg/fleet"
)

// validActions are the admin operations reachable from the command line.
var validActions = []string{"ping", "health", "info", "deploy", "migrate"}

type rootOptions struct {
	adminKey   string
	instance   string
	action     string
	configFile string
	fleetFile  string
	insecure   bool
	verbose    bool
}

// NewRootCommand builds the mspadm root command.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	v := viper.New()
	v.SetEnvPrefix("MSPADM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "mspadm",
		Short: "Administer MSP platform instances over their admin API",
		Long: "mspadm issues administrative operations (ping, health, info, integration\n" +
			"deploys, database migrations) against one platform instance or a whole\n" +
			"fleet, and prints each result as JSON. An operation that fails is still a\n" +
			"result: it is printed with status \"error\" and the process exits zero.",
		Version: admin.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.adminKey == "" {
				opts.adminKey = v.GetString("admin-key")
			}
			return runRoot(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.SetNormalizeFunc(normalizeFlagName)
	flags.StringVarP(&opts.adminKey, "admin-key", "k", "", "admin API key (or set MSPADM_ADMIN_KEY)")
	flags.StringVarP(&opts.instance, "instance", "i", "", "platform instance base URL")
	flags.StringVarP(&opts.action, "action", "a", "", "action to perform: "+strings.Join(validActions, ", "))
	flags.StringVarP(&opts.configFile, "config-file", "f", "", "JSON config file for the deploy and migrate actions")
	flags.StringVar(&opts.fleetFile, "fleet", "", "YAML fleet inventory; runs health or deploy across every instance")
	flags.BoolVar(&opts.insecure, "insecure", false, "skip TLS certificate verification")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newDemoCommand())
	return cmd
}

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	if opts.adminKey == "" {
		return errors.New("--admin-key is required (or set MSPADM_ADMIN_KEY)")
	}
	if opts.action == "" {
		return fmt.Errorf("--action is required (one of: %s)", strings.Join(validActions, ", "))
	}
	if !slices.Contains(validActions, opts.action) {
		return fmt.Errorf("unknown action %q (valid actions: %s)", opts.action, strings.Join(validActions, ", "))
	}
	if opts.instance == "" && opts.fleetFile == "" {
		return errors.New("--instance is required (or --fleet for bulk health and deploy)")
	}
	if opts.instance != "" && opts.fleetFile != "" {
		return errors.New("--instance and --fleet are mutually exclusive")
	}
	if opts.fleetFile != "" && opts.action != "health" && opts.action != "deploy" {
		return fmt.Errorf("--fleet supports only the health and deploy actions, not %q", opts.action)
	}

	// Config is read and validated before any request goes out, so a bad
	// invocation never reaches an instance.
	var config json.RawMessage
	if opts.action == "deploy" || opts.action == "migrate" {
		if opts.configFile == "" {
			return fmt.Errorf("--config-file is required for the %s action", opts.action)
		}
		data, err := os.ReadFile(opts.configFile)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("config file %s is not valid JSON: %w", opts.configFile, err)
		}
	}

	log := newLogger(cmd.ErrOrStderr(), opts.verbose)
	defer func() { _ = log.Sync() }()

	client := admin.New(admin.Config{
		Credential:         opts.adminKey,
		InsecureSkipVerify: opts.insecure,
		Logger:             log,
	})
	ctx := cmd.Context()

	if opts.fleetFile != "" {
		fl, err := fleet.Load(opts.fleetFile)
		if err != nil {
			return fmt.Errorf("load fleet: %w", err)
		}
		var res *admin.BulkResult
		switch opts.action {
		case "health":
			res = client.BulkHealthCheck(ctx, fl.URLs())
		case "deploy":
			res = client.BulkDeployIntegration(ctx, fl.URLs(), config)
		}
		return printJSON(cmd.OutOrStdout(), res)
	}

	var res admin.Result
	switch opts.action {
	case "ping":
		res = client.Ping(ctx, opts.instance)
	case "health":
		res = client.HealthCheck(ctx, opts.instance)
	case "info":
		res = client.SystemInfo(ctx, opts.instance)
	case "deploy":
		res = client.DeployIntegration(ctx, opts.instance, config)
	case "migrate":
		res = client.ExecuteMigration(ctx, opts.instance, config)
	}
	return printJSON(cmd.OutOrStdout(), res)
}

// normalizeFlagName accepts underscore spellings such as --admin_key for
// every flag.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// printJSON pretty-prints v the way existing platform tooling renders
// results.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// newLogger builds a console logger writing to w, debug level when verbose.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

// Execute runs the CLI and exits non-zero on usage or I/O errors. Failed
// admin operations are data, not errors: they print as a result envelope
// and exit zero.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
