package main

// Run database migrations:
//   go run ./cmd/migrate [up|down|status|version]

import (
	"context"
	"os"

	"lendnova-backend/internal/shared/config"
	"lendnova-backend/internal/shared/storage/db"
	"lendnova-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	defer telemetry.Sync()
	ctx := context.Background()

	opts := db.LoadOptions(db.ProfileMigrate)
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.complete", map[string]any{"command": command})
}
