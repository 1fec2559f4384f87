package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-user/pkg/client"
	"github.com/tendant/simple-user/pkg/iam"
	"github.com/tendant/simple-user/pkg/login"
	"github.com/tendant/simple-user/pkg/notice"
	"github.com/tendant/simple-user/pkg/notification"
	"github.com/tendant/simple-user/pkg/password"
	"github.com/tendant/simple-user/pkg/tokengenerator"
	"github.com/tendant/simple-user/pkg/user"
)

type UserDbConfig struct {
	Host     string `env:"USER_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"USER_PG_PORT" env-default:"5432"`
	Database string `env:"USER_PG_DATABASE" env-default:"user_db"`
	User     string `env:"USER_PG_USER" env-default:"user"`
	Password string `env:"USER_PG_PASSWORD" env-default:"pwd"`
}

func (d UserDbConfig) toDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

type JwtConfig struct {
	Secret            string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer            string `env:"JWT_ISSUER" env-default:"simple-user"`
	Audience          string `env:"JWT_AUDIENCE" env-default:"simple-user"`
	AccessTokenExpiry string `env:"ACCESS_TOKEN_EXPIRY" env-default:"1h"`
}

type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     uint16 `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:"noreply@example.com"`
	Password string `env:"EMAIL_PASSWORD" env-default:"pwd"`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
}

type LoginConfig struct {
	MaxLoginAttempts int32 `env:"LOGIN_MAX_ATTEMPTS" env-default:"5"`
}

type SearchConfig struct {
	ResultsPerPage int `env:"SEARCH_RESULTS_PER_PAGE" env-default:"15"`
}

type AvatarConfig struct {
	Dir          string `env:"AVATAR_DIR" env-default:"./storage"`
	AssetBaseUrl string `env:"ASSET_BASE_URL" env-default:"http://localhost:4000/assets"`
}

type ApiConfig struct {
	Prefix string `env:"API_PREFIX" env-default:"/v1"`
}

type Config struct {
	FrontendUrl  string `env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	UserDbConfig UserDbConfig
	JwtConfig    JwtConfig
	EmailConfig  EmailConfig
	LoginConfig  LoginConfig
	SearchConfig SearchConfig
	AvatarConfig AvatarConfig
	ApiConfig    ApiConfig
}

// loadEnvFile loads environment variables from .env if present. Already
// set variables win.
func loadEnvFile() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		slog.Error("Failed to load .env file", "error", err, "path", envFile)
	}
}

func main() {
	// Create a logger with source enabled
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)

	dbConfig := config.UserDbConfig.toDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	// Notification manager with the email templates registered
	notificationManager, err := notice.NewNotificationManager(
		config.FrontendUrl,
		notice.WithSMTP(notification.SMTPConfig{
			Host:     config.EmailConfig.Host,
			Port:     int(config.EmailConfig.Port),
			Username: config.EmailConfig.Username,
			Password: config.EmailConfig.Password,
			From:     config.EmailConfig.From,
			TLS:      config.EmailConfig.TLS,
		}),
	)
	if err != nil {
		slog.Error("Failed initialize notification manager", "err", err)
		os.Exit(-1)
	}

	// Repositories
	userRepo := user.NewPostgresUserRepository(pool)
	resetRepo := password.NewPostgresPasswordResetRepository(pool)
	loginRepo := login.NewPostgresLoginRepository(pool)
	checker := iam.NewPostgresChecker(pool)

	// Services
	userService := user.NewUserService(userRepo,
		user.WithTxBeginner(pool),
		user.WithNotificationManager(notificationManager),
		user.WithResultsPerPage(config.SearchConfig.ResultsPerPage),
	)
	passwordService := password.NewPasswordService(resetRepo, userRepo,
		password.WithNotificationManager(notificationManager),
	)
	loginService := login.NewLoginService(userRepo, loginRepo,
		login.WithMaxLoginAttempts(config.LoginConfig.MaxLoginAttempts),
	)

	accessTokenExpiry, err := time.ParseDuration(config.JwtConfig.AccessTokenExpiry)
	if err != nil {
		slog.Error("Failed to parse access token expiry", "err", err)
		os.Exit(-1)
	}
	tokenService := tokengenerator.NewTokenService(
		tokengenerator.NewJwtTokenGenerator(config.JwtConfig.Secret, config.JwtConfig.Issuer, config.JwtConfig.Audience),
		tokengenerator.WithAccessTokenExpiry(accessTokenExpiry),
	)
	jwtAuth := jwtauth.New("HS256", []byte(config.JwtConfig.Secret), nil)

	// Handles
	userHandle := user.NewHandle(userService,
		user.WithAvatarStore(user.NewLocalAvatarStore(config.AvatarConfig.Dir), config.AvatarConfig.AssetBaseUrl),
		user.WithBasePath(config.ApiConfig.Prefix+"/users"),
	)
	passwordHandle := password.NewHandle(passwordService)
	loginHandle := login.NewHandle(loginService, tokenService)

	server.R.Route(config.ApiConfig.Prefix, func(r chi.Router) {
		// Public surface
		loginHandle.TokenRoutes(r)
		userHandle.RegisterRoutes(r)
		passwordHandle.Routes(r)

		// Authenticated surface
		r.Group(func(r chi.Router) {
			r.Use(client.Verifier(jwtAuth))
			r.Use(client.AuthUserMiddleware)
			r.Use(client.RevocationMiddleware(loginService))

			loginHandle.RevokeRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(iam.Middleware(checker, config.ApiConfig.Prefix))
				userHandle.ProfileRoutes(r)
				userHandle.UserRoutes(r)
			})
		})
	})

	server.Run()
}
