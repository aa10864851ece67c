package router

import (
	"context"
	"net/http"
	"path/filepath"

	authsvc "github.com/imaijo201-star/real-estate-mg/internal/application/auth"
	"github.com/imaijo201-star/real-estate-mg/internal/application/bulk"
	"github.com/imaijo201-star/real-estate-mg/internal/application/images"
	propsvc "github.com/imaijo201-star/real-estate-mg/internal/application/properties"
	"github.com/imaijo201-star/real-estate-mg/internal/config"
	"github.com/imaijo201-star/real-estate-mg/internal/constants"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/database"
	"github.com/imaijo201-star/real-estate-mg/internal/infrastructure/storage"
	authhandler "github.com/imaijo201-star/real-estate-mg/internal/interfaces/handlers/auth"
	healthhandler "github.com/imaijo201-star/real-estate-mg/internal/interfaces/handlers/health"
	prophandler "github.com/imaijo201-star/real-estate-mg/internal/interfaces/handlers/properties"
	uploadhandler "github.com/imaijo201-star/real-estate-mg/internal/interfaces/handlers/uploads"
	"github.com/imaijo201-star/real-estate-mg/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Deps are the connections the app is built on. Store may be a local or
// S3 backend; static /uploads serving is mounted only for local.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Rdb    *redis.Client
	Store  storage.Store
}

// CreateApp opens the database, Redis and image store from cfg and builds
// the app on them.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(opt)
	store, err := storage.Open(context.Background(), cfg.Storage.Backend, cfg.Storage.UploadRoot, storage.S3Config{
		Bucket:    cfg.Storage.S3Bucket,
		Region:    cfg.Storage.S3Region,
		Endpoint:  cfg.Storage.S3Endpoint,
		AccessKey: cfg.Storage.S3AccessKey,
		SecretKey: cfg.Storage.S3SecretKey,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return NewApp(Deps{Config: cfg, DB: db, Rdb: rdb, Store: store}), db, rdb, nil
}

// NewApp wires middleware, services and routes onto d.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 50
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(d.Rdb),
		EnableTrustedProxyCheck: true,
		BodyLimit:               bodyLimit << 20,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Metrics())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.HealthMarker(d.Rdb))
	app.Use(middleware.SessionWithClient(d.Rdb))

	if local, ok := d.Store.(*storage.Local); ok {
		app.Static("/uploads", filepath.Join(local.Root, "uploads"))
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	hh := &healthhandler.Handlers{
		Rdb:            d.Rdb,
		DB:             &gormDBPinger{db: d.DB},
		Store:          d.Store,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)
	app.Get("/health/errors", hh.Errors)

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: d.DB},
		Rdb:        d.Rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	imgs := &images.Service{DB: d.DB, Store: d.Store}
	props := &propsvc.Service{DB: d.DB, Images: imgs}
	ph := &prophandler.Handlers{Service: props, Bulk: &bulk.Service{DB: d.DB, Properties: props}}
	uh := &uploadhandler.Handlers{Service: imgs}

	api := app.Group("/api/v1")

	pg := api.Group("/properties", middleware.RequireAuth())
	pg.Get("/", middleware.AuthorizePermission(constants.ViewProperties), ph.List)
	pg.Get("/stats", middleware.AuthorizePermission(constants.ViewProperties), ph.Stats)
	pg.Get("/export", middleware.AuthorizePermission(constants.ViewProperties), ph.Export)
	pg.Get("/template", middleware.AuthorizePermission(constants.ViewProperties), ph.Template)
	pg.Post("/import", middleware.AuthorizePermission(constants.ImportProperties), ph.Import)
	pg.Get("/:id", middleware.AuthorizePermission(constants.ViewProperties), ph.Get)
	pg.Post("/", middleware.AuthorizePermission(constants.EditProperties), ph.Create)
	pg.Put("/:id", middleware.AuthorizePermission(constants.EditProperties), ph.Update)
	pg.Delete("/:id", middleware.AuthorizePermission(constants.DeleteProperties), ph.Delete)

	api.Delete("/images/:id", middleware.RequireAuth(), middleware.AuthorizePermission(constants.UploadImages), uh.DeleteImage)
	api.Post("/upload", middleware.RequireAuth(), middleware.AuthorizePermission(constants.UploadImages), uh.Upload)

	return app
}

// Handler adapts app to net/http for serverless hosting.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
