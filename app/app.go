package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/database"
	"github.com/linguapersonal/backend/handlers"
	"github.com/linguapersonal/backend/middleware/ratelimit"
	"github.com/linguapersonal/backend/openapi"
	"github.com/linguapersonal/backend/server"
	"github.com/linguapersonal/backend/services/auth"
	"github.com/linguapersonal/backend/services/jwt"
	"github.com/linguapersonal/backend/services/lesson"
	"github.com/linguapersonal/backend/services/logging"
	"github.com/linguapersonal/backend/services/mail"
	"github.com/linguapersonal/backend/services/progress"
)

// App assembles the whole backend behind an fx container.
type App struct {
	fx     *fx.App
	logger *logging.Service
}

// New builds the application. Pass a nil config to load it from the
// environment.
func New(customConfig *config.Config) *App {
	a := &App{}

	a.fx = fx.New(
		config.NewProvider(customConfig),
		logging.Module,
		fx.Provide(func() *database.ModelsOption {
			return database.WithModels(allModels()...)
		}),
		database.Module,
		jwt.Module,
		mail.Module,
		auth.Module,
		lesson.Module,
		progress.Module,
		ratelimit.Module,
		server.Module,
		handlers.Module,
		openapi.Module,
		fx.Populate(&a.logger),
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	return a
}

func allModels() []any {
	var models []any
	models = append(models, auth.Models()...)
	models = append(models, lesson.Models()...)
	models = append(models, progress.Models()...)
	return models
}

func (a *App) Start() error {
	return a.fx.Start(context.Background())
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Errorf("Failed to stop application gracefully: %v", err)
		} else {
			log.Printf("Failed to stop application gracefully: %v", err)
		}
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() {
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	if a.logger != nil {
		a.logger.Infof("Received signal %v, shutting down gracefully...", sig)
	} else {
		log.Printf("Received signal %v, shutting down gracefully...", sig)
	}

	a.Stop()
}
