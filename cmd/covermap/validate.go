package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covermap/internal/continent"
	"covermap/internal/geom"
)

func newValidateCmd(o *options) *cobra.Command {
	var fetch bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the config, continent table and services file without starting the map",
		Long: `Loads every input the map needs and reports problems.

With --fetch the boundary dataset is downloaded too, and countries that no
continent claims are listed: they render but cannot be clicked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd.Context(), cmd.OutOrStdout(), o, fetch)
		},
	}
	cmd.Flags().BoolVar(&fetch, "fetch", false, "also fetch the boundary dataset")
	return cmd
}

func validate(ctx context.Context, out io.Writer, o *options, fetch bool) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "config: ok (surface %s, zoom %s)\n", cfg.Interaction.Surface, cfg.Interaction.ZoomStrategy)

	table, err := loadTable(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "continents: %d\n", len(table.Continents()))

	cat, err := loadServices(cfg.Services.Path, zap.NewNop())
	if err != nil {
		return err
	}
	if cat == nil {
		fmt.Fprintf(out, "services: %s not found\n", cfg.Services.Path)
	} else {
		active := cat.Active()
		fmt.Fprintf(out, "services: %d active of %d\n", len(active), len(cat.Entries))
		for _, loc := range active {
			if _, ok := table.GetCountryContinent(loc.Country); !ok {
				fmt.Fprintf(out, "  warning: %s has no continent\n", loc.Country)
			}
		}
	}

	if !fetch {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.GetDatasetTimeout())
	defer cancel()
	loader := &geom.Loader{
		Source:    cfg.Dataset.URL,
		Client:    &http.Client{},
		NameKeys:  cfg.Dataset.NameKeys,
		UserAgent: cfg.Dataset.UserAgent,
	}
	ds, err := loader.Fetch(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "dataset: %d countries, %d skipped\n", len(ds.Features), ds.Skipped)
	for _, name := range unmapped(ds, table) {
		fmt.Fprintf(out, "  unmapped: %s\n", name)
	}
	return nil
}

// unmapped lists dataset countries that belong to no continent.
func unmapped(ds *geom.Dataset, table *continent.Table) []string {
	var out []string
	for _, f := range ds.Features {
		if _, ok := table.GetCountryContinent(f.Name); !ok {
			out = append(out, f.Name)
		}
	}
	return out
}
