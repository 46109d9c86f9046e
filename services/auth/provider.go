package auth

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/services/jwt"
	"github.com/linguapersonal/backend/services/logging"
	"github.com/linguapersonal/backend/services/mail"
)

func ProvideAuthService(cfg *config.Config, db *gorm.DB, jwtSvc *jwt.Service, mailSvc *mail.Service, logger *logging.Service) *Service {
	svc := NewService(cfg, db, jwtSvc, logger)
	svc.SetCodeSender(mailSvc)
	return svc
}

var Module = fx.Options(
	fx.Provide(ProvideAuthService),
)
