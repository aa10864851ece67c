package bootstrap

import (
	"github.com/imaijo201-star/real-estate-mg/internal/config"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/database"
	"github.com/imaijo201-star/real-estate-mg/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for serverless hosting (the api handler imports
// this package, not internal).
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, db, _, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return app, nil
}
