package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger   *zap.Logger
	config   *Config
	server   *http.Server
	cleanups []func()
}

// setupCommons wires the pieces shared by both front ends: configs,
// logging, the records store, the circulation trail and the service.
func setupCommons(gitCommit, gitTag, buildTime string, logToStdout bool) (*Config, *zap.Logger, *LibraryService, CirculationTrail, []func(), error) {
	config, err := LoadAndInitConfigs(gitCommit, gitTag, buildTime)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	err = os.MkdirAll(filepath.Dir(config.LogFile), 0o700)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	logFile, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to create logging file: %s", err)
	}
	closer := func() {
		if cerr := logFile.Close(); cerr != nil {
			fmt.Println("error during closing of log file: ", cerr)
		}
	}
	// The console front end owns stdout, so its logs go to file only.
	logConfig := *config
	if !logToStdout {
		logConfig.IsProduction = true
	}
	logger, flusher := SetupLogging(&logConfig, logFile)
	cleanups := []func(){flusher, closer}

	// Setup the circulation trail when enabled.
	trail := NewNopTrail()
	if config.Trail.Enable {
		trailClient, err := GetBoltTrailClient(config)
		if err != nil {
			return nil, nil, nil, nil, cleanups, fmt.Errorf("failed to open the circulation trail: %s", err)
		}
		trail = NewBoltTrail(logger, &config.Trail, trailClient)
		cleanups = append(cleanups, func() {
			if cerr := trail.Close(); cerr != nil {
				logger.Error("failed to close the circulation trail", zap.Error(cerr))
			}
		})
	}

	// Setup the records store and the library service.
	store := NewFileStore(logger, &config.Store)
	library, err := NewLibraryService(logger, config, NewClock(config.IsProduction), NewRecordIDs(), store, trail)
	if err != nil {
		return nil, nil, nil, nil, cleanups, fmt.Errorf("failed to load the library records: %s", err)
	}

	return config, logger, library, trail, cleanups, nil
}

// NewApp provides an instance of App running the web front end.
func NewApp(gitCommit, gitTag, buildTime string) (AppProvider, error) {
	config, logger, library, trail, cleanups, err := setupCommons(gitCommit, gitTag, buildTime, true)
	if err != nil {
		for _, f := range cleanups {
			f()
		}
		return nil, err
	}

	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   time.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		NewClock(config.IsProduction),
		NewRequestIDs(),
		library,
		trail,
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
	// Wrap the router with the default http timeout handler.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the api server definition.
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}

	return &App{
		logger:   logger,
		config:   config,
		server:   srv,
		cleanups: cleanups,
	}, nil
}

// RunConsole starts the interactive text-menu front end on the same
// records file and blocks until the user exits.
func RunConsole(gitCommit, gitTag, buildTime string) error {
	_, logger, library, _, cleanups, err := setupCommons(gitCommit, gitTag, buildTime, false)
	defer func() {
		for _, f := range cleanups {
			f()
		}
	}()
	if err != nil {
		return err
	}

	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	console := NewConsole(logger, library, os.Stdin, os.Stdout)
	return console.Run(nCtx)
}

// Run starts the web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("web server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve starts the web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("web server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
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
			app.logger.Info("web server stopping. reason: requested to stop")
		} else {
			app.logger.Info("web server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("web server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("web server graceful shutdown timed out")
		default:
			app.logger.Info("web server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("web server going to force shutdown", zap.Error(app.server.Close()))
		}
		return nil
	}
}
