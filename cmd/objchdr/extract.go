package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [dir]",
	Short: "Scan all headers and write the output artifacts",
	Long: `Scan every .h file under dir (default: the configured repo), then write
classes.json, enums.json, headers.md, bindings.go and snapshot.meta.json
to the output directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Repo = args[0]
	}

	repoPath, err := filepath.Abs(cfg.Repo)
	if err != nil {
		return fmt.Errorf("resolving repo path: %w", err)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	snapshot, err := eng.GenerateSnapshot(cmd.Context(), repoPath)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if err := eng.WriteArtifacts(repoPath); err != nil {
		return fmt.Errorf("writing artifacts: %w", err)
	}

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "\nExtraction complete:\n")
	fmt.Fprintf(w, "  Repository:  %s\n", snapshot.Meta.RepoPath)
	fmt.Fprintf(w, "  Headers:     %d\n", snapshot.Meta.HeaderCount)
	fmt.Fprintf(w, "  Classes:     %d\n", snapshot.Meta.ClassCount)
	fmt.Fprintf(w, "  Enums:       %d\n", snapshot.Meta.EnumCount)
	fmt.Fprintf(w, "  Artifacts:   %d\n", len(snapshot.Artifacts))
	fmt.Fprintf(w, "  Duration:    %s\n", snapshot.Meta.Duration)
	fmt.Fprintf(w, "  Output:      %s\n", eng.OutputDir(repoPath))
	if len(snapshot.Meta.Skipped) > 0 {
		fmt.Fprintf(w, "  Unreadable:  %d\n", len(snapshot.Meta.Skipped))
		for _, sk := range snapshot.Meta.Skipped {
			fmt.Fprintf(w, "    %s: %s\n", sk.Path, sk.Error)
		}
	}
	return nil
}
