package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DBDriver            string // postgres | sqlite
	DatabaseURL         string
	AutoMigrate         bool
	RedisURL            string
	SessionSecret       string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	BodyLimitMB         int
	Storage             StorageConfig
}

// StorageConfig selects where image files live.
type StorageConfig struct {
	Backend     string // local | s3
	UploadRoot  string // local: directory that holds the uploads/ tree
	S3Bucket    string
	S3Region    string
	S3Endpoint  string // MinIO or other S3-compatible endpoint
	S3AccessKey string
	S3SecretKey string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("STORAGE_BACKEND", "local")
	viper.SetDefault("UPLOAD_ROOT", "public")
	viper.SetDefault("BODY_LIMIT_MB", 50)

	env := viper.GetString("APP_ENV")

	dbURL := viper.GetString("DATABASE_URL")
	if dbURL == "" && env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		DBDriver:            strings.ToLower(viper.GetString("DB_DRIVER")),
		DatabaseURL:         dbURL,
		AutoMigrate:         viper.GetBool("AUTO_MIGRATE"),
		RedisURL:            viper.GetString("REDIS_URL"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		BodyLimitMB:         viper.GetInt("BODY_LIMIT_MB"),
		Storage: StorageConfig{
			Backend:     strings.ToLower(viper.GetString("STORAGE_BACKEND")),
			UploadRoot:  viper.GetString("UPLOAD_ROOT"),
			S3Bucket:    viper.GetString("S3_BUCKET"),
			S3Region:    viper.GetString("S3_REGION"),
			S3Endpoint:  viper.GetString("S3_ENDPOINT"),
			S3AccessKey: viper.GetString("S3_ACCESS_KEY"),
			S3SecretKey: viper.GetString("S3_SECRET_KEY"),
		},
	}, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
