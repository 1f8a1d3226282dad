package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stoik/tempmail/services/mail-service/internal/db"
	"github.com/stoik/tempmail/services/mail-service/internal/store"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create database tables",
	Long:  "Creates the accounts and messages tables and their indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Initialize database
		if err := db.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		fmt.Println("Running migrations...")
		if err := store.NewPostgres(db.Pool).Migrate(ctx); err != nil {
			return err
		}

		fmt.Println("✓ Database setup complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
