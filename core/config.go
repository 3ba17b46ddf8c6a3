package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string

		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		SendgridAPIKey string
		RollbarToken   string

		Server   ServerConfig
		Database DatabaseConfig

		WorkDir string
	}

	ServerConfig struct {
		Host string
		Port string

		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		DisableTLS bool
	}
)

func (c ServerConfig) Address() string { return c.Host + ":" + c.Port }

// DSN builds the postgres connection string consumed by the gorm driver.
func (c DatabaseConfig) DSN() string {
	sslMode := "require"
	if c.DisableTLS {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, sslMode,
	)
}

// NewConfig loads the app configuration: defaults first, then an optional
// config/.env.<env> file, then environment variables.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Progressive")
	conf.SetDefault("secretKey", "w#2b8y!p0q5-uoxh2(h!x)#*c2(#yg4h^$cegm2emy&3v@9d")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@progressive.sch")
	conf.SetDefault("serverHost", "")
	conf.SetDefault("serverPort", "8000")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	conf.SetDefault("shutdownTimeout", 20*time.Second)
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbUser", "postgres")
	conf.SetDefault("dbPassword", "")
	conf.SetDefault("dbName", "progressive")
	conf.SetDefault("dbDisableTLS", true)
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV") // DEV (default) | TEST | QA | PROD
	if env == "" {
		env = "DEV"
	}
	conf.SetDefault("testMode", env == "TEST")
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:             env,
		Debug:           conf.GetBool("debug"),
		TestMode:        conf.GetBool("testMode"),
		AppName:         conf.GetString("appName"),
		SecretKey:       conf.GetString("secretKey"),
		FrontendBaseURL: conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    conf.GetString("appName"),
			Address: conf.GetString("defaultFromEmail"),
		},
		SendgridAPIKey: conf.GetString("sendgridApiKey"),
		RollbarToken:   conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Port:                      conf.GetString("serverPort"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
			ShutdownTimeout:           conf.GetDuration("shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Host:       conf.GetString("dbHost"),
			Port:       conf.GetString("dbPort"),
			User:       conf.GetString("dbUser"),
			Password:   conf.GetString("dbPassword"),
			Name:       conf.GetString("dbName"),
			DisableTLS: conf.GetBool("dbDisableTLS"),
		},
		WorkDir: wd,
	}
}

// NewTestConfig returns a Config suitable for unit tests: no external
// services, short deltas.
func NewTestConfig() *Config {
	return &Config{
		Env:      "TEST",
		Debug:    true,
		TestMode: true,
		AppName:  "Progressive",

		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Progressive", Address: "noreply@progressive.sch"},

		Server: ServerConfig{
			Port:                      "0",
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 30 * time.Minute,
			PasswordResetTimeoutDelta: time.Hour,
			ShutdownTimeout:           time.Second,
		},
	}
}

// Getwd returns the current working directory; it dies on failure.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.Getwd: %v", err)
	}
	return wd
}
