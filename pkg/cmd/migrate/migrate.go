package migrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/cmd/cmdutil"
	"github.com/mpapenbr/race-strategy-sim/pkg/config"
	dbmigrate "github.com/mpapenbr/race-strategy-sim/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration(cmd)
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSourceURL,
		"migrationSourceUrl",
		"m",
		"",
		"url to migration files (default: embedded migrations)")

	return cmd
}

func startMigration(cmd *cobra.Command) error {
	cmdutil.InitLogging()
	defer func() {
		//nolint:errcheck // stderr sync may fail on terminals
		log.Sync()
	}()
	if config.DB == "" {
		return errors.New("no database configured (--db)")
	}
	if err := cmdutil.WaitForRequiredServices(cmd.Context()); err != nil {
		return err
	}

	if config.MigrationSourceURL != "" {
		log.Info("Using migrations files at", log.String("source", config.MigrationSourceURL))
	}
	dbURL := prepareURLForDB(config.DB)
	if err := dbmigrate.MigrateDBFrom(config.MigrationSourceURL, dbURL); err != nil {
		return err
	}
	version, dirty, err := dbmigrate.Version(dbURL)
	if err != nil {
		return err
	}
	log.Info("Database migrated", log.Uint("version", version), log.Bool("dirty", dirty))
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}

func prepareURLForDB(url string) string {
	options := "sslmode=disable"
	if strings.Contains(url, "sslmode=") {
		return url
	}
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	}
	return fmt.Sprintf("%s?%s", url, options)
}
