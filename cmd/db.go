package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect or manage the local database",
}

var dbPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the database file location",
	Args:  cobra.NoArgs,
	RunE:  runDBPath,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts per table",
	Args:  cobra.NoArgs,
	RunE:  runDBStats,
}

var dbDelCmd = &cobra.Command{
	Use:   "del",
	Short: "Delete the database file",
	Args:  cobra.NoArgs,
	RunE:  runDBDel,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbPathCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.AddCommand(dbDelCmd)

	dbDelCmd.Flags().Bool("force", false, "skip the confirmation prompt")
}

func runDBPath(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, nil, log)
	if err != nil {
		return err
	}

	path, err := dbPath(cfg.DBPath)
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}

func runDBStats(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, nil, log)
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", s.Path())
	fmt.Printf("  jobs:        %d\n", stats.Jobs)
	fmt.Printf("  assessments: %d\n", stats.Assessments)
	fmt.Printf("  drafts:      %d\n", stats.Drafts)
	return nil
}

func runDBDel(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(cmd, nil, log)
	if err != nil {
		return err
	}

	path, err := dbPath(cfg.DBPath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No database at %s\n", path)
			return nil
		}
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete %s and everything in it", path),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				fmt.Println("Aborted.")
				return nil
			}
			return err
		}
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting database: %w", err)
	}

	fmt.Printf("Deleted %s\n", path)
	return nil
}
