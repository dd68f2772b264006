package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/coldfinder/internal/catalog"
	"github.com/hyperjump/coldfinder/internal/cli"
	"github.com/hyperjump/coldfinder/internal/config"
	"github.com/hyperjump/coldfinder/internal/models"
	"github.com/hyperjump/coldfinder/internal/storage"
)

func newCropsCmd(root *rootOptions) *cobra.Command {
	var (
		jsonOut bool
		lang    string
	)
	cmd := &cobra.Command{
		Use:   "crops",
		Short: "List crop storage temperatures from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(root.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			kb, err := loadCatalog(cmd.Context(), &cfg.Catalog)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			format := cli.OutputText
			if jsonOut {
				format = cli.OutputJSON
			}
			return cli.WriteCrops(cmd.OutOrStdout(), kb.Crops(), format, lang)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output JSON")
	cmd.Flags().StringVar(&lang, "lang", models.DefaultLocale, "crop label locale (en, ta)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog file (.yaml, .json, .xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := catalog.LoadFile(args[0])
			if err != nil {
				if errors.Is(err, catalog.ErrInvalidCatalog) {
					return fmt.Errorf("%s is invalid:\n%w", args[0], err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (version %q, %d facilities, %d crops)\n",
				args[0], kb.Version(), kb.Len(), len(kb.Crops()))
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a catalog file and store it in a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			db, err := storage.NewSQLiteCatalog(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			doc := kb.Document()
			if err := db.Import(cmd.Context(), &storage.CatalogData{
				Version:    doc.Version,
				Facilities: doc.Facilities,
				Crops:      doc.Crops,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d facilities and %d crops into %s\n",
				len(doc.Facilities), len(doc.Crops), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func newInitConfigCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write a config file with default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !force && fileExists(path) {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
