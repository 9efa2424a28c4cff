package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Env          string
	Build        string
	Debug        bool
	TestMode     bool
	AppName      string
	SecretKey    string
	RollbarToken string

	Backend struct {
		BaseURL string `validate:"required,url"`
		Token   string
	}

	Evaluation struct {
		ResetDelay time.Duration `validate:"gte=0"`
	}

	Server struct {
		Host            string
		Address         string `validate:"required"`
		ShutdownTimeout time.Duration
		SessionTTL      time.Duration `validate:"gt=0"`
	}
}

// NewConfig loads the configuration from defaults, an optional config/.env.<env> file and the environment.
// Environment variables are prefixed with the current env, e.g. DEV_BACKENDBASEURL.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Feedback Portal")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k2#v9-dq)w7u!m$+3^zr0ofe(x8@4hpl1yab5nct6sgj")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("backendBaseURL", "http://localhost:8080/api")
	v.SetDefault("backendToken", "")
	v.SetDefault("resetDelay", 3*time.Second)
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("sessionTTL", 2*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Backend.BaseURL = strings.TrimRight(v.GetString("backendBaseURL"), "/")
	conf.Backend.Token = v.GetString("backendToken")
	conf.Evaluation.ResetDelay = v.GetDuration("resetDelay")
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Address = v.GetString("serverAddress")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.SessionTTL = v.GetDuration("sessionTTL")
	return conf
}

// Validate checks the values that cannot be defaulted sensibly.
func (conf *Config) Validate(validate *validator.Validate) error {
	if err := validate.Struct(conf); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}
