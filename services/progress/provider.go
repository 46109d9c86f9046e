package progress

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/linguapersonal/backend/services/lesson"
	"github.com/linguapersonal/backend/services/logging"
)

func ProvideProgressService(db *gorm.DB, sessions *lesson.Service, logger *logging.Service) *Service {
	return NewService(db, sessions, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideProgressService),
)
