package command

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dengueguard/monitor/reminders"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Measurement reminders",
}

var remindersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List overdue measurements",
	Long:  "The list command prints the reminders the next sweep would publish without publishing them",
	RunE:  func(cmd *cobra.Command, args []string) error { return Run(listReminders) },
}

func listReminders(poller *reminders.Poller) error {
	list, err := poller.Collect(context.TODO(), time.Now())
	if err != nil {
		return err
	}

	for _, reminder := range list {
		last := "never"
		if reminder.LastMeasured != nil {
			last = reminder.LastMeasured.Format(time.RFC3339)
		}
		fmt.Printf("%s %s %s (last measured %s)\n", reminder.PatientUserId, reminder.BedNumber, reminder.VitalType, last)
	}
	fmt.Printf("Found %v overdue measurements\n", len(list))

	return nil
}

func init() {
	remindersCmd.AddCommand(remindersListCmd)
	rootCmd.AddCommand(remindersCmd)
}
