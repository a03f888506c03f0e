package main

import (
	"fmt"
	"os"

	"github.com/chairside/r4sync/internal/ioconfig"
	"github.com/chairside/r4sync/internal/iofs"
	"github.com/chairside/r4sync/internal/iologger"
	"github.com/chairside/r4sync/pkg/config"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "r4sync",
		Short: "r4sync migrates a legacy R4 database into PostgreSQL",
		Long: `r4sync streams records from a legacy R4 practice-management
database (SQL Server), resolves legacy patient identifiers to canonical
patient records, idempotently upserts normalized snapshots into a
PostgreSQL destination, queues unresolved references for manual
remediation, and verifies parity between the two systems by sampling.

Main phases:
  - schema:      create or migrate the destination support schema
  - import:      import legacy entities (patients, appointments, ...)
  - charting:    normalize charting domains into canonical records
  - linkage:     inspect and remediate unresolved references
  - cohort:      select a deterministic patient cohort
  - parity:      spot-check latest state between source and destination
  - drop-report: explain count deltas for one patient and domain

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (R4SYNC_*)
  3. Config file (~/.config/r4sync/config.yaml)
  4. Built-in defaults

Environment Variables:
  Nested fields use underscores (source.host → R4SYNC_SOURCE_HOST).

    R4SYNC_SOURCE_HOST         R4 SQL Server host
    R4SYNC_SOURCE_PASSWORD     R4 SQL Server password
    R4SYNC_DATABASE_HOST       PostgreSQL host
    R4SYNC_DATABASE_PASSWORD   PostgreSQL password
    R4SYNC_IMPORT_ACTOR_ID     Audit actor id
    R4SYNC_LOG_LEVEL           Log level (debug/info/warn/error)

  See 'go doc github.com/chairside/r4sync/pkg/config' for the full
  list.`,
		Version:           r4sync.Version,
		PersistentPreRunE: bootstrap,
		SilenceUsage:      true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.config/r4sync/config.yaml)")

	// Override version flag to use -V (consistent with other projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for r4sync")

	rootCmd.AddCommand(getSchemaCmd())
	rootCmd.AddCommand(getImportCmd())
	rootCmd.AddCommand(getChartingCmd())
	rootCmd.AddCommand(getLinkageCmd())
	rootCmd.AddCommand(getCohortCmd())
	rootCmd.AddCommand(getParityCmd())
	rootCmd.AddCommand(getDropReportCmd())

	return rootCmd
}

// bootstrap prepares the filesystem footprint, loads configuration and
// initializes logging before any subcommand runs.
func bootstrap(cmd *cobra.Command, args []string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	if err := iofs.EnsureDirs(homeDir); err != nil {
		return err
	}
	if err := iofs.EnsureConfigFile(homeDir); err != nil {
		return err
	}

	path := cfgFile
	if path == "" {
		path = config.ConfigFilePath(homeDir)
	}
	if err := ioconfig.Validate(path); err != nil {
		return err
	}
	opts, err := ioconfig.Load(path)
	if err != nil {
		return err
	}

	cfg = config.New()
	cfg.Update(opts)
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	return iologger.Init(config.LogDir(homeDir), cfg.Log, true)
}

// getConfig returns the loaded configuration for subcommands.
func getConfig() *config.Config {
	return cfg
}
