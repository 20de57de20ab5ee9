package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dengueguard/monitor/retention"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Retention cleanup",
	Long:  "The cleanup command is used to purge expired notifications and attention records",
}

var cleanupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the retention cleanup once",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(runCleanup) },
}

func runCleanup(cleaner *retention.Cleaner) error {
	result, err := cleaner.Run(context.TODO())
	fmt.Printf("Deleted %v notifications\n", result.Notifications)
	fmt.Printf("Deleted %v attention records\n", result.Attention)
	return err
}

func init() {
	cleanupCmd.AddCommand(cleanupRunCmd)
	rootCmd.AddCommand(cleanupCmd)
}
