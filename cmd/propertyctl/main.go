// Command propertyctl runs maintenance tasks against the property database:
// schema migration, operator seeding, spreadsheet import/export and retrying
// image promotion.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/imaijo201-star/real-estate-mg/internal/config"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/database"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:          "propertyctl",
		Short:        "Property admin maintenance tool",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		MigrateCmd(),
		SeedUsersCmd(),
		ImportCmd(),
		ExportCmd(),
		ImagesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func getDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func getStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	return storage.Open(ctx, cfg.Storage.Backend, cfg.Storage.UploadRoot, storage.S3Config{
		Bucket:    cfg.Storage.S3Bucket,
		Region:    cfg.Storage.S3Region,
		Endpoint:  cfg.Storage.S3Endpoint,
		AccessKey: cfg.Storage.S3AccessKey,
		SecretKey: cfg.Storage.S3SecretKey,
	})
}
