package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mellihq/melli-ads/internal/config"
	"github.com/mellihq/melli-ads/internal/logger"
	"github.com/mellihq/melli-ads/internal/searchindex"
	"github.com/mellihq/melli-ads/internal/services"
	"github.com/mellihq/melli-ads/internal/store"
	"github.com/mellihq/melli-ads/internal/store/postgres"
	"github.com/mellihq/melli-ads/internal/store/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "adsctl",
	Short: "Admin CLI for the ads service search index",
}

func main() {
	_ = godotenv.Load()

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create and configure the search index, then load all advertisements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(ctx context.Context, svc *services.AdvertisementService, idx *searchindex.Meili) error {
				if err := idx.EnsureIndex(ctx); err != nil {
					return err
				}
				n, err := svc.ReindexAll(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("index ready, %d advertisements loaded\n", n)
				return nil
			})
		},
	}

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "Bulk-load all advertisements into the existing index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(ctx context.Context, svc *services.AdvertisementService, idx *searchindex.Meili) error {
				n, err := svc.ReindexAll(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%d advertisements loaded\n", n)
				return nil
			})
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print search index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(ctx context.Context, _ *services.AdvertisementService, idx *searchindex.Meili) error {
				st, err := idx.Stats(ctx)
				if err != nil {
					return err
				}
				return json.NewEncoder(os.Stdout).Encode(st)
			})
		},
	}

	rootCmd.AddCommand(initCmd, reindexCmd, statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withDeps builds the store and index from configuration and hands them to fn.
func withDeps(ctx context.Context, fn func(context.Context, *services.AdvertisementService, *searchindex.Meili) error) error {
	log := logger.New("adsctl")

	cfg, err := config.New()
	if err != nil {
		return err
	}

	var st store.Store
	switch cfg.DBDriver {
	case "postgres":
		st, err = postgres.New(ctx, cfg.PostgresDSN)
	case "sqlite":
		st, err = sqlite.New(ctx, cfg.SQLitePath)
	default:
		err = fmt.Errorf("unsupported DB driver: %s", cfg.DBDriver)
	}
	if err != nil {
		return err
	}

	idx := searchindex.NewMeili(cfg.MeiliHost, cfg.MeiliKey, cfg.MeiliTimeout(), log)
	svc := services.NewAdvertisementService(st, idx, log)
	return fn(ctx, svc, idx)
}
