package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"pokedex/pkg/assembler"
	"pokedex/pkg/checkpoint"
	"pokedex/pkg/generation"
	"pokedex/pkg/logger"
	"pokedex/pkg/pipeline"
	"pokedex/pkg/pokeapi"
	"pokedex/pkg/silhouette"
	"pokedex/pkg/typechart"
	"pokedex/pkg/ui"
)

var (
	// Build command flags
	variant         string
	concurrent      int
	startID         int
	maxID           int
	outputFile      string
	checkpointFile  string
	checkpointEvery int
	silhouetteDir   string
	noSilhouettes   bool
	forceRestart    bool
	baseURL         string
	maxRetries      int
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch every entity and write the dataset",
	Long: `Fetch ids [start-id, max-id] from PokeAPI, assemble one record per id and
write the dataset to the output file.

Progress is checkpointed every --checkpoint-every ids. Rerunning after an
interruption resumes from the checkpoint; --force-restart discards it.
Ids that cannot be fetched after all retries are skipped and logged.`,
	Example: `  # Build the full flat dataset
  pokedex build

  # Grouped output with base forms and their alternate forms
  pokedex build --variant grouped --output pokedex_grouped.json

  # A small sequential build without silhouettes
  pokedex build --max-id 151 --concurrent 1 --no-silhouettes

  # Ignore a previous checkpoint
  pokedex build --force-restart`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&variant, "variant", "", "output variant: flat or grouped (default flat)")
	buildCmd.Flags().IntVar(&concurrent, "concurrent", 0, "number of concurrent workers (default 5)")
	buildCmd.Flags().IntVar(&startID, "start-id", 0, "first id to fetch (default 1)")
	buildCmd.Flags().IntVar(&maxID, "max-id", 0, "last id to fetch (default 1025)")
	buildCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default pokedex.json)")
	buildCmd.Flags().StringVar(&checkpointFile, "checkpoint", "", "checkpoint file (default pokedex_checkpoint.json)")
	buildCmd.Flags().IntVar(&checkpointEvery, "checkpoint-every", 0, "checkpoint cadence in ids (default 25)")
	buildCmd.Flags().StringVar(&silhouetteDir, "silhouette-dir", "", "silhouette directory (default silhouettes)")
	buildCmd.Flags().BoolVar(&noSilhouettes, "no-silhouettes", false, "skip silhouette generation")
	buildCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "discard any existing checkpoint")
	buildCmd.Flags().StringVar(&baseURL, "base-url", "", "PokeAPI base URL")
	buildCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "attempts per request (default 3)")
}

func buildFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := cmd.Flags().Changed

	if set("variant") {
		flags["variant"] = variant
	}
	if set("concurrent") {
		flags["concurrent"] = concurrent
	}
	if set("start-id") {
		flags["start-id"] = startID
	}
	if set("max-id") {
		flags["max-id"] = maxID
	}
	if set("output") {
		flags["output"] = outputFile
	}
	if set("checkpoint") {
		flags["checkpoint"] = checkpointFile
	}
	if set("checkpoint-every") {
		flags["checkpoint-every"] = checkpointEvery
	}
	if set("silhouette-dir") {
		flags["silhouette-dir"] = silhouetteDir
	}
	if noSilhouettes {
		flags["silhouettes"] = false
	}
	if set("base-url") {
		flags["base-url"] = baseURL
	}
	if set("max-retries") {
		flags["max-retries"] = maxRetries
	}
	return flags
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(buildFlags(cmd))
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return err
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("Pokédex builder starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := pokeapi.NewFromConfig(cfg, log)

	// A nil *Cache must not reach the assembler as a non-nil interface
	var artifacts assembler.ArtifactCache
	cache, err := silhouette.NewFromConfig(cfg.Silhouette, client, log)
	if err != nil {
		return err
	}
	if cache != nil {
		artifacts = cache
	}

	asm := assembler.New(client, typechart.Default(), generation.Default(), artifacts, log)
	checkpoints := checkpoint.NewManager(cfg.Pipeline.CheckpointFile, log)

	opts := pipeline.OptionsFromConfig(cfg)
	opts.ForceRestart = forceRestart

	logger.LogComponentStart("pipeline", map[string]interface{}{
		"base_url":    client.BaseURL(),
		"variant":     opts.Variant,
		"concurrency": opts.Concurrency,
		"output":      opts.OutputFile,
		"checkpoint":  checkpoints.Path(),
	})

	orchestrator := pipeline.New(opts, asm, checkpoints, ui.NewTerminal(os.Stdout), log)
	_, err = orchestrator.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		logger.LogComponentStop("pipeline", "interrupted")
		ui.PrintWarning("Interrupted, progress saved to", checkpoints.Path())
		return err
	case err != nil:
		logger.LogComponentStop("pipeline", "failed")
		return err
	}

	logger.LogComponentStop("pipeline", "completed")
	ui.PrintSuccess("[BUILD COMPLETED]")
	return nil
}
