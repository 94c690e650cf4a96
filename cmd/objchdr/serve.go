package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dejo1307/objchdr/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Run an MCP server on stdin/stdout. A snapshot left by a previous extract
run is loaded first so lookups answer from it immediately.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	if repoPath, err := filepath.Abs(cfg.Repo); err == nil {
		classesPath := filepath.Join(eng.OutputDir(repoPath), cfg.Output.ClassesFile)
		if _, err := os.Stat(classesPath); err == nil {
			log.Printf("[main] loading existing snapshot from %s", eng.OutputDir(repoPath))
			if err := eng.LoadSnapshot(cmd.Context(), repoPath); err != nil {
				log.Printf("[main] warning: failed to load existing snapshot: %v", err)
			}
		}
	}

	srv, err := server.New(eng, cfg)
	if err != nil {
		return err
	}
	return srv.Run(cmd.Context())
}
