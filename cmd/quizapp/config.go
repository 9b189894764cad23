package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Quiz   QuizConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port          string
	SessionKey    string `mapstructure:"session_key"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

type QuizConfig struct {
	Bank            string
	DB              string
	QuizID          string `mapstructure:"quiz_id"`
	QuestionSeconds int    `mapstructure:"question_seconds"`
}

type LogConfig struct {
	Verbose bool
	File    string
}

// LoadConfig reads quizapp.yaml from path if present; QUIZAPP_* env vars override it
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("quizapp")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("QUIZAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8180")
	v.SetDefault("server.session_key", "")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("quiz.bank", "")
	v.SetDefault("quiz.db", "")
	v.SetDefault("quiz.quiz_id", "")
	v.SetDefault("quiz.question_seconds", 90)
	v.SetDefault("log.verbose", false)
	v.SetDefault("log.file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Quiz.QuestionSeconds <= 0 {
		return nil, fmt.Errorf("quiz.question_seconds must be positive, got %d", cfg.Quiz.QuestionSeconds)
	}
	return &cfg, nil
}
