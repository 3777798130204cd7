package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"gosurvey/adapters/excel"
	"gosurvey/adapters/postgres"
	"gosurvey/app"
	"gosurvey/internal/config"
	"gosurvey/internal/errors"
	"gosurvey/internal/migration"
	"gosurvey/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	runner := migration.NewRunner()
	if err := runner.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}
	log.Printf("[Main] database ready, schema version %s", runner.Version())

	return db, nil
}

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file loaded: %v", err)
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] configuration error: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("[Main] database error: %v", err)
	}
	defer db.Close()

	collector := postgres.NewResponseCollector(db)
	exports := app.NewExportService(
		collector,
		excel.NewAnalyticsWriter(appConfig.Export.SheetName, appConfig.Export.CommentLimit),
		excel.NewSegmentedWriter(""),
		excel.NewResponsesWriter(),
	)

	server := ui.NewServer(appConfig, exports)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Fatalf("[Main] server error: %v", err)
	}
}
