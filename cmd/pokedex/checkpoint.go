package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"pokedex/pkg/checkpoint"
	"pokedex/pkg/ui"
)

var checkpointPath string

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or clear the build checkpoint",
}

var checkpointInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the saved checkpoint",
	Args:  cobra.NoArgs,
	RunE:  runCheckpointInfo,
}

var checkpointClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved checkpoint so the next build starts over",
	Args:  cobra.NoArgs,
	RunE:  runCheckpointClear,
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointInfoCmd)
	checkpointCmd.AddCommand(checkpointClearCmd)

	checkpointCmd.PersistentFlags().StringVar(&checkpointPath, "checkpoint", "", "checkpoint file (default from configuration)")
}

func checkpointManager() (*checkpoint.Manager, error) {
	if checkpointPath != "" {
		return checkpoint.NewManager(checkpointPath, nil), nil
	}
	cfg, err := loadConfig(nil)
	if err != nil {
		return nil, err
	}
	return checkpoint.NewManager(cfg.Pipeline.CheckpointFile, nil), nil
}

func runCheckpointInfo(cmd *cobra.Command, args []string) error {
	mgr, err := checkpointManager()
	if err != nil {
		return err
	}

	info, err := mgr.Info()
	if err != nil {
		return fmt.Errorf("%w; run 'pokedex checkpoint clear' to discard it", err)
	}
	if info == nil {
		ui.PrintInfo("No checkpoint", mgr.Path())
		return nil
	}

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ui.PrintInfo(k, fmt.Sprint(info[k]))
	}
	return nil
}

func runCheckpointClear(cmd *cobra.Command, args []string) error {
	mgr, err := checkpointManager()
	if err != nil {
		return err
	}
	if !mgr.Exists() {
		ui.PrintInfo("No checkpoint", mgr.Path())
		return nil
	}
	if err := mgr.Delete(); err != nil {
		return err
	}
	ui.PrintSuccess("Checkpoint removed: " + mgr.Path())
	return nil
}
