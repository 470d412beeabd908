package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hosteline/epass-server/internal/api/http"
	"github.com/hosteline/epass-server/internal/auth"
	"github.com/hosteline/epass-server/internal/storage/postgres"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log     LogConfig
	Http    http.Config
	Db      postgres.Config
	Jwt     auth.JWTConfig
	Binding BindingConfig
	Gate    GateConfig
}

type BindingConfig struct {
	Cost int `mapstructure:"cost"`
}

type GateConfig struct {
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

var config Config

func InitConfig() {
	var err error

	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/epass-server")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("db.url", "DATABASE_URL")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		panic(err)
	}

	// Initialize logger with configured log level
	initLogger(config.Log.Level)

	// Pretty print config as JSON (only at DEBUG level)
	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		configJSON, err := json.MarshalIndent(config, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
