package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Grading  Grading
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Grading selects the active grading strategy and carries credentials for
// the LLM-backed variants. Unset API keys fall back to the environment.
type Grading struct {
	Strategy      string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	LLMTimeout    time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GRADING_STRATEGY", "keyword")
	viper.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("LLM_TIMEOUT", "30s")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Grading.Strategy = viper.GetString("GRADING_STRATEGY")
	config.Grading.GeminiAPIKey = viper.GetString("GEMINI_API_KEY")
	config.Grading.GeminiModel = viper.GetString("GEMINI_MODEL")
	config.Grading.OpenAIAPIKey = viper.GetString("OPENAI_API_KEY")
	config.Grading.OpenAIBaseURL = viper.GetString("OPENAI_BASE_URL")
	config.Grading.OpenAIModel = viper.GetString("OPENAI_MODEL")
	config.Grading.LLMTimeout = viper.GetDuration("LLM_TIMEOUT")

	log.Info().Str("strategy", config.Grading.Strategy).Str("port", config.Server.Port).Msg("Config loaded")
	return &config, nil
}
