package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/stoik/tempmail/services/mail-service/internal/db"
	"github.com/stoik/tempmail/services/mail-service/internal/store"
)

// openStore returns the backend selected by store.driver and a func releasing it.
func openStore(ctx context.Context) (store.Store, func(), error) {
	switch driver := viper.GetString("store.driver"); driver {
	case "memory":
		return store.NewMemory(time.Now), func() {}, nil
	case "", "postgres":
		if err := db.Init(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store.NewPostgres(db.Pool), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store.driver %q", driver)
	}
}
