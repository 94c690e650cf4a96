package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var classCmd = &cobra.Command{
	Use:   "class <Name>",
	Short: "Print a class as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runClass,
}

var enumCmd = &cobra.Command{
	Use:   "enum <Name>",
	Short: "Print an NS_ENUM or NS_OPTIONS as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnum,
}

var findTypeCmd = &cobra.Command{
	Use:   "find-type <Name>",
	Short: "Print the header that declares a type",
	Args:  cobra.ExactArgs(1),
	RunE:  runFindType,
}

func init() {
	rootCmd.AddCommand(classCmd)
	rootCmd.AddCommand(enumCmd)
	rootCmd.AddCommand(findTypeCmd)
}

func runClass(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	cls, ok, err := eng.FindClass(cmd.Context(), cfg.Repo, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("class %q not found under %s", args[0], cfg.Repo)
	}
	return printJSON(cmd.OutOrStdout(), cls)
}

func runEnum(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	en, ok, err := eng.FindEnum(cmd.Context(), cfg.Repo, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("enum %q not found under %s", args[0], cfg.Repo)
	}
	return printJSON(cmd.OutOrStdout(), en)
}

func runFindType(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	path, ok, err := eng.Locator().FindTypeFile(cmd.Context(), cfg.Repo, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no header declares %q under %s", args[0], cfg.Repo)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
