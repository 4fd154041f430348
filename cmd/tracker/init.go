package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ersonp/diagnostics-tracker/internal/application/handlers"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/config"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/vectordb/qdrant"
)

type initFlags struct {
	seed   string
	vector bool
}

func newInitCmd() *cobra.Command {
	var flags initFlags

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new tracker project",
		Long:  "Creates a .tracker directory with default configuration and the SQLite database, optionally seeded with startups.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.seed, "seed", "", "Import startups from a JSON, YAML or CSV file")
	cmd.Flags().BoolVar(&flags.vector, "with-qdrant", false, "Create the Qdrant evidence collection (for evidence.dedup)")

	return cmd
}

func runInit(cmd *cobra.Command, flags initFlags) error {
	ctx := cmd.Context()

	base, err := basePath()
	if err != nil {
		return err
	}

	var manager ports.EvidenceCollection
	if flags.vector {
		repo, err := qdrant.NewRepository(config.Default().Qdrant)
		if err != nil {
			return fmt.Errorf("connecting to qdrant: %w", err)
		}
		defer repo.Close()
		manager = repo
	}

	result, err := handlers.NewInitHandler(manager).Handle(ctx, base)
	if err != nil {
		return err
	}

	pterm.Success.Printf("Created %s\n", result.ConfigPath)
	if result.CollectionName != "" {
		pterm.Success.Printf("Created Qdrant collection: %s\n", result.CollectionName)
	}

	return withDeps(ctx, func(d *Deps) error {
		pterm.Success.Printf("Created database %s\n", result.DatabasePath)
		if flags.seed == "" {
			return nil
		}
		return seedStartups(ctx, d, flags.seed)
	})
}

func seedStartups(ctx context.Context, d *Deps, path string) error {
	res, err := d.StartupHandler.Import(ctx, path, handlers.ImportOptions{})
	if err != nil {
		return fmt.Errorf("seeding startups: %w", err)
	}
	pterm.Success.Printf("Seeded %s\n", plural(res.Imported, "startup"))
	for _, e := range res.Errors {
		pterm.Warning.Println(e.Error())
	}
	return nil
}
