package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var posesCmd = &cobra.Command{
	Use:   "poses",
	Short: "List the pose catalog",
	RunE:  runPoses,
}

func init() {
	rootCmd.AddCommand(posesCmd)
}

func runPoses(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	for _, entry := range catalog.Entries() {
		fmt.Printf("%-14s %s\n", entry.Key, entry.Label)
	}
	return nil
}
