package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/boltdb/bolt"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	server         *http.Server
	redisClient    *redis.Client
	cleanups       []func() error
	queueConsumers []func(context.Context) error
}

// NewApp provides an instance of App.
func NewApp(configFile, envFile string) (AppProvider, error) {
	config, err := LoadAndInitConfigs(configFile, envFile, GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	clock := NewClock(config.IsProduction)

	// ensure the logs folder exists and Setup the logging module.
	if config.LogFolder != "" {
		if err = os.MkdirAll(config.LogFolder, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create logging folder: %s", err)
		}
	}
	logWriter := NewLogFileWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, clock)

	app := &App{
		logger:   logger,
		config:   config,
		cleanups: []func() error{flusher, logWriter.Close},
	}

	// fail cleans what was already opened when a later step fails.
	fail := func(format string, err error) (AppProvider, error) {
		app.Clean()
		return nil, fmt.Errorf(format, err)
	}

	// Setup the storage layer based on the configured driver.
	var storage Storage
	var boltClient *bolt.DB
	switch config.Storage.Driver {
	case StorageDriverBolt:
		boltClient, err = GetBoltDBClient(config)
		if err != nil {
			return fail("failed to connect to boltDB database: %s", err)
		}
		storage = NewBoltStorage(logger, boltClient)
	default:
		db, perr := GetPostgresClient(config)
		if perr != nil {
			return fail("failed to connect to postgres server: %s", perr)
		}
		if err = MigratePostgres(context.Background(), db); err != nil {
			_ = db.Close()
			return fail("failed to migrate postgres schema: %s", err)
		}
		storage = NewPostgresStorage(logger, db)
	}
	app.cleanups = append(app.cleanups, storage.Close)

	// The journal shares the bolt database when bolt is the main store.
	var journal Journal
	if config.Events.JournalEnable {
		if boltClient == nil {
			boltClient, err = GetBoltDBClient(config)
			if err != nil {
				return fail("failed to open events journal: %s", err)
			}
			app.cleanups = append(app.cleanups, boltClient.Close)
		}
		journal = NewBoltJournal(boltClient)
	}

	// Setup the events queue and its consumers.
	queue := NewNoopQueue()
	if config.Redis.Enable {
		redisClient, rerr := GetRedisClient(config)
		if rerr != nil {
			_ = redisClient.Close()
			return fail("failed to connect to redis server: %s", rerr)
		}
		app.redisClient = redisClient
		queue = NewRedisQueue(redisClient)
		if journal != nil {
			consumer := NewJournalConsumer(logger, queue, journal)
			app.queueConsumers = append(app.queueConsumers, func(ctx context.Context) error {
				return consumer.Consume(ctx, SellerEventsQueue, BookEventsQueue)
			})
		}
	}

	sellerService := NewSellerService(logger, clock, storage, queue)
	bookService := NewBookService(logger, clock, storage, queue)
	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		NewIDsHandler(),
		sellerService,
		bookService,
		journal,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)

	handler := http.Handler(router)
	if config.Server.RequestTimeout > 0 {
		// Wrap the router with the default http timeout handler.
		handler = http.TimeoutHandler(
			router,
			config.Server.RequestTimeout,
			"Timeout. Processing taking too long. Please reach out to support.")
	}

	// Build the api server definition.
	app.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        handler,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}

	return app, nil
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions in reverse order.
// Logs are flushed first and the log file is closed last.
func (app *App) Clean() {
	if len(app.cleanups) == 0 {
		return
	}
	if err := app.cleanups[0](); err != nil {
		fmt.Fprintln(os.Stderr, "cleanup:", err)
	}
	for i := len(app.cleanups) - 1; i > 0; i-- {
		if err := app.cleanups[i](); err != nil {
			fmt.Fprintln(os.Stderr, "cleanup:", err)
		}
	}
	app.cleanups = nil
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.String("app.storage", app.config.Storage.Driver),
		)
		err := app.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch {
		case err == nil, errors.Is(err, http.ErrServerClosed):
			app.logger.Info("api server graceful shutdown succeeded")
		case errors.Is(err, context.DeadlineExceeded):
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}
		if app.redisClient != nil {
			_ = app.redisClient.Close()
		}
		return nil
	}
}

// ConsumeQueues runs all queue consumers into separate controlled goroutines.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			consume := consume
			g.Go(func() error {
				return consume(gCtx)
			})
		}
		return nil
	}
}
