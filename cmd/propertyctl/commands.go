package main

import (
	"fmt"
	"os"

	"github.com/imaijo201-star/real-estate-mg/internal/application/bulk"
	"github.com/imaijo201-star/real-estate-mg/internal/application/images"
	"github.com/imaijo201-star/real-estate-mg/internal/application/properties"
	"github.com/imaijo201-star/real-estate-mg/internal/application/users"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/database"

	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update all tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := getDB(cfg)
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Println("Schema is up to date.")
			return nil
		},
	}
}

func SeedUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Create the default operator accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = cfg.DevPassword
			}
			if password == "" {
				password = users.DefaultPassword
			}
			db, err := getDB(cfg)
			if err != nil {
				return err
			}
			n, err := (&users.Service{DB: db}).SeedOperators(cmd.Context(), password)
			if err != nil {
				return err
			}
			fmt.Printf("Created %d operator(s).\n", n)
			return nil
		},
	}
	cmd.Flags().String("password", "", "initial password (default DEV_PASSWORD or the built-in default)")
	return cmd
}

func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import properties from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := getDB(cfg)
			if err != nil {
				return err
			}
			ownerName, _ := cmd.Flags().GetString("owner")
			owner, err := (&users.Service{DB: db}).FindByUsername(cmd.Context(), ownerName)
			if domain.IsNotFound(err) {
				return fmt.Errorf("no operator named %q; run seed-users first", ownerName)
			}
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := &bulk.Service{DB: db}
			res, err := svc.ImportFromSpreadsheet(cmd.Context(), f, owner.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d properties, skipped %d duplicates.\n", res.Count, res.Skipped)
			return nil
		},
	}
	cmd.Flags().String("owner", "admin", "username recorded as creator")
	return cmd
}

func ExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export every property to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := getDB(cfg)
			if err != nil {
				return err
			}
			svc := &bulk.Service{DB: db, Properties: &properties.Service{DB: db}}
			buf, err := svc.ExportAll(cmd.Context(), properties.Filter{})
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s.\n", args[0])
			return nil
		},
	}
}

func ImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Image maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "promote",
		Short: "Move images still in temp storage into their property folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := getDB(cfg)
			if err != nil {
				return err
			}
			store, err := getStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			n, err := (&images.Service{DB: db, Store: store}).PromotePending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Promoted %d image(s).\n", n)
			return nil
		},
	})
	return cmd
}
