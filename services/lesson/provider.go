package lesson

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/services/logging"
)

func ProvideLessonService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return NewService(&cfg.Lesson, db, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideLessonService),
)
