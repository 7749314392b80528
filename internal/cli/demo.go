package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/msplatform/mspadm/internal/demo"
	"github.com/msplatform/mspadm/pkg/admin"
	"github.com/msplatform/mspadm/pkg/fleet"
)

func newDemoCommand() *cobra.Command {
	var (
		adminKey  string
		fleetFile string
		insecure  bool
		verbose   bool
	)

	v := viper.New()
	_ = v.BindEnv("admin_api_key", "ADMIN_API_KEY")
	v.SetDefault("admin_api_key", "your_admin_key_here")

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the demonstration scenarios against a fleet",
		Long: "Runs a multi-instance health report, a fleet-wide integration deployment\n" +
			"and a single-instance database migration against the example fleet, or\n" +
			"against the instances in the file given with --fleet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if adminKey == "" {
				adminKey = v.GetString("admin_api_key")
			}

			instances := demo.DefaultInstances
			if fleetFile != "" {
				fl, err := fleet.Load(fleetFile)
				if err != nil {
					return fmt.Errorf("load fleet: %w", err)
				}
				instances = fl.URLs()
			}

			log := newLogger(cmd.ErrOrStderr(), verbose)
			defer func() { _ = log.Sync() }()

			client := admin.New(admin.Config{
				Credential:         adminKey,
				InsecureSkipVerify: insecure,
				Logger:             log,
			})
			demo.Run(cmd.Context(), demo.Options{
				Client:    client,
				Instances: instances,
				Out:       cmd.OutOrStdout(),
			})
			return nil
		},
	}

	cmd.Flags().SetNormalizeFunc(normalizeFlagName)
	cmd.Flags().StringVarP(&adminKey, "admin-key", "k", "", "admin API key (defaults to ADMIN_API_KEY)")
	cmd.Flags().StringVar(&fleetFile, "fleet", "", "YAML fleet inventory to target")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}
