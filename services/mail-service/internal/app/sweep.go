package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stoik/tempmail/services/mail-service/internal/mailbox"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired mailboxes once",
	Long:  "Removes accounts past their expiry together with their messages, then exits",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		log := newLogger()

		st, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		d, err := mailbox.NewSweeper(st, viper.GetDuration("sweep.interval"), log).SweepOnce(ctx)
		if err != nil {
			return fmt.Errorf("failed to sweep: %w", err)
		}

		fmt.Printf("✓ Removed %d accounts and %d messages\n", d.Accounts, d.Messages)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
