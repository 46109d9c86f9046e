package logging

import (
	"context"

	"go.uber.org/fx"

	"github.com/linguapersonal/backend/config"
)

func ProvideLoggingService(cfg *config.Config) (*Service, error) {
	return NewService(cfg.Log)
}

var Module = fx.Options(
	fx.Provide(ProvideLoggingService),
	fx.Invoke(func(lc fx.Lifecycle, svc *Service) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				_ = svc.Sync()
				return nil
			},
		})
	}),
)
