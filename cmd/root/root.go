// Package root contains the root command and the state shared by all
// subcommands.
package root

import (
	"fmt"
	"strings"
	"sync"

	"fjacquet/payrecon/internal/config"
	"fjacquet/payrecon/internal/container"
	"fjacquet/payrecon/internal/logging"
	"fjacquet/payrecon/internal/report"

	"github.com/spf13/cobra"
)

// CommonFlags are the persistent flags of every command.
type CommonFlags struct {
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	DBPath       string
	TenantsFile  string
	OutputFormat string
	Tenant       string
}

var (
	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "payrecon",
		Short: "Reconcile incoming bank payments against open invoices.",
		Long: `payrecon issues invoices with structured payment references, imports
bank statements (CSV, MT940, CAMT) and matches the payments they contain to
invoices, keeping each invoice's paid amount and status current.`,
		SilenceUsage:      true,
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			Shutdown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// SharedFlags holds the parsed persistent flags.
	SharedFlags = CommonFlags{}

	initOnce     sync.Once
	appContainer *container.Container
	log          logging.Logger = logging.NewLogrusAdapter("info", "text")
)

// Init registers the persistent flags. Later calls are no-ops.
func Init() {
	initOnce.Do(registerFlags)
}

func registerFlags() {
	f := Cmd.PersistentFlags()
	f.StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches ./payrecon.yaml and $HOME/.payrecon/)")
	f.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	f.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	f.StringVar(&SharedFlags.DBPath, "db", "", "SQLite database file")
	f.StringVar(&SharedFlags.TenantsFile, "tenants", "", "Tenant directory YAML file")
	f.StringVarP(&SharedFlags.OutputFormat, "output-format", "f", "json", "Output format (json, yaml)")
	f.StringVarP(&SharedFlags.Tenant, "tenant", "t", "", "Tenant identifier")
}

// LoadConfig resolves the configuration and applies flag overrides.
func LoadConfig() (*config.Config, error) {
	config.LoadEnv()
	cfg, err := config.InitializeConfigFromFile(SharedFlags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(SharedFlags.LogLevel)
	}
	if SharedFlags.LogFormat != "" {
		cfg.Log.Format = strings.ToLower(SharedFlags.LogFormat)
	}
	if SharedFlags.DBPath != "" {
		cfg.Database.Path = SharedFlags.DBPath
	}
	if SharedFlags.TenantsFile != "" {
		cfg.Tenants.File = SharedFlags.TenantsFile
	}
	return cfg, nil
}

// NoStore marks commands that run without opening the database.
const NoStore = "payrecon/no-store"

func initialize(cmd *cobra.Command, args []string) error {
	// A failed RunE skips PersistentPostRun.
	Shutdown()

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if cmd.Annotations[NoStore] == "true" {
		log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
		return nil
	}
	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	appContainer = c
	log = c.GetLogger()
	return nil
}

// Shutdown closes the container opened for the current command.
func Shutdown() {
	if appContainer == nil {
		return
	}
	if err := appContainer.Close(); err != nil {
		log.WithError(err).Warn("Failed to close store")
	}
	appContainer = nil
}

// GetContainer returns the container of the running command.
func GetContainer() *container.Container {
	return appContainer
}

// GetLogger returns the configured logger.
func GetLogger() logging.Logger {
	return log
}

// RequireTenant returns the --tenant flag or an error when it is missing.
func RequireTenant() (string, error) {
	if SharedFlags.Tenant == "" {
		return "", fmt.Errorf("--tenant is required")
	}
	return SharedFlags.Tenant, nil
}

// Render prints v to the command's output in the selected format.
func Render(cmd *cobra.Command, v interface{}) error {
	if appContainer == nil {
		return report.Render(cmd.OutOrStdout(), v, SharedFlags.OutputFormat)
	}
	return appContainer.GetReport().Render(cmd.OutOrStdout(), v, SharedFlags.OutputFormat)
}
