package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/miqdad-dev/portfolio/internal/config"
	"github.com/miqdad-dev/portfolio/internal/logging"
	"github.com/miqdad-dev/portfolio/internal/pipeline"
	"github.com/miqdad-dev/portfolio/internal/surrealdb"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string
	var verbose, dryRun, skipDetails, aiDescriptions bool

	root := &cobra.Command{
		Use:   "portfolio-sync",
		Short: "GitHub repositories → projects.json for the portfolio site",
		Long: `Fetches the configured account's repositories from the GitHub API,
filters and normalizes them, and overwrites projects.json.`,
		Example: `  portfolio-sync              # Sync projects
  portfolio-sync --dry-run    # Preview changes`,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(stderr, verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			return pipeline.Run(context.Background(), cfg, pipeline.Options{
				DryRun:         dryRun,
				SkipDetails:    skipDetails,
				AIDescriptions: aiDescriptions,
				Output:         cmd.OutOrStdout(),
			})
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./portfolio-sync.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed output")
	root.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be synced without writing files")
	root.Flags().BoolVar(&skipDetails, "skip-details", false, "Skip the per-repository detail requests")
	root.Flags().BoolVar(&aiDescriptions, "ai-descriptions", false, "Generate missing descriptions with the configured LLM")

	root.AddCommand(statsCmd(&cfgFile), configCmd(&cfgFile))
	return root
}

func statsCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show mirrored project counts and language breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			if !cfg.MirrorEnabled() {
				return fmt.Errorf("SURREAL_URL is not configured")
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			stats, err := db.GetStats(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Projects: %d\n", stats.Total)
			fmt.Fprintf(out, "Featured: %d\n", stats.Featured)
			fmt.Fprintf(out, "Stars:    %d\n", stats.Stars)

			langs, err := db.GetLanguageBreakdown(ctx)
			if err != nil {
				return err
			}
			if len(langs) > 0 {
				fmt.Fprintln(out, "\nLanguage breakdown:")
				for _, l := range langs {
					fmt.Fprintf(out, "  %-20s %d\n", l.Language, l.Count)
				}
			}
			return nil
		},
	}
}

func configCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration (secrets redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			b, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
