// Package indexer initializes and runs the indexing process: it opens the
// database, applies migrations, starts the metrics endpoint, and supervises
// the listener, queue, and worker goroutines until shutdown.
package indexer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/knetproto/kindex/internal/config"
	"github.com/knetproto/kindex/internal/logging"
	"github.com/knetproto/kindex/internal/metrics"
	"github.com/knetproto/kindex/internal/persist"
	"github.com/knetproto/kindex/internal/pipeline"
	"github.com/knetproto/kindex/internal/repositories/repomanager"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// intakeBuffer smooths bursts between the listener and the dispatcher.
const intakeBuffer = 64

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	repos  repomanager.RepositoryManager
	unit   *persist.Unit
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	unit := persist.NewUnit(db, repos)

	return &App{config: c, logger: logger, db: db, repos: repos, unit: unit}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until shutdown. Only startup failures (connectivity,
// migrations) are returned; per-transaction failures stay inside the
// pipeline.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting indexer",
		"workers", app.config.WorkerCount,
		"channel", app.config.Channel)

	app.initSignalHandler(cancelFunc)

	if err := app.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db connect error: %w", err)
	}
	if err := app.repos.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		metrics.Serve(ctx, app.config.MetricsAddr, app.logger)
	}()

	intake := make(chan string, intakeBuffer)
	queue := pipeline.NewQueue(app.config.WorkerCount)
	txRepo := app.repos.Transactions(app.db)

	for i := 0; i < app.config.WorkerCount; i++ {
		worker := pipeline.NewWorker(i, txRepo, app.unit,
			app.config.FetchRetryAttempts, app.config.FetchRetryDelay, app.logger)
		inbox := queue.Inbox(i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx, inbox)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Dispatch(ctx, intake)
	}()

	listener := pipeline.NewListener(app.config.DatabaseDSN, app.config.Channel,
		app.config.ReconnectDelay, app.logger)

	wg.Add(1)
	go func() {
		defer wg.Done()
		listener.Run(ctx, intake)
		close(intake)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "indexer stopped")
	return nil
}
