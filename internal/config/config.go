// Package config resolves agent settings from the environment. A .env file
// in the working directory is loaded first, then real environment variables
// take precedence.
package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var once sync.Once

func initConfig() {
	once.Do(func() {
		_ = godotenv.Load()
		viper.AutomaticEnv()

		_ = viper.BindEnv("OPENAI_API_KEY")
		_ = viper.BindEnv("GOOGLE_API_KEY")
		_ = viper.BindEnv("MISTRAL_API_KEY")
		_ = viper.BindEnv("REDIS_ADDR")
		_ = viper.BindEnv("OPENAI_REALTIME_ENDPOINT")
		_ = viper.BindEnv("GEMINI_REALTIME_ENDPOINT")
		_ = viper.BindEnv("AGENT_LOG_DIR")
		_ = viper.BindEnv("TOKEN_API_KEY")
		_ = viper.BindEnv("TOKEN_API_SECRET")

		viper.SetDefault("OPENAI_REALTIME_ENDPOINT", "https://api.openai.com")
		viper.SetDefault("GEMINI_REALTIME_ENDPOINT", "https://generativelanguage.googleapis.com")
		viper.SetDefault("AGENT_LOG_DIR", "logs")
	})
}

// Require returns the named variable or an error when it is unset. Entry
// points treat that error as fatal.
func Require(name string) (string, error) {
	initConfig()
	v := viper.GetString(name)
	if v == "" {
		return "", fmt.Errorf("config: required environment variable %s is not set", name)
	}
	return v, nil
}

func OpenAIAPIKey() (string, error)  { return Require("OPENAI_API_KEY") }
func GoogleAPIKey() (string, error)  { return Require("GOOGLE_API_KEY") }
func MistralAPIKey() (string, error) { return Require("MISTRAL_API_KEY") }

// RedisAddr returns the Redis address, or "" when caching is disabled.
func RedisAddr() string {
	initConfig()
	return viper.GetString("REDIS_ADDR")
}

func OpenAIRealtimeEndpoint() string {
	initConfig()
	return viper.GetString("OPENAI_REALTIME_ENDPOINT")
}

func GeminiRealtimeEndpoint() string {
	initConfig()
	return viper.GetString("GEMINI_REALTIME_ENDPOINT")
}

// LogDir is where daily agent log files are written.
func LogDir() string {
	initConfig()
	return viper.GetString("AGENT_LOG_DIR")
}

// TokenCredentials returns the API key pair used to sign room tokens.
func TokenCredentials() (key, secret string, err error) {
	key, err = Require("TOKEN_API_KEY")
	if err != nil {
		return "", "", err
	}
	secret, err = Require("TOKEN_API_SECRET")
	if err != nil {
		return "", "", err
	}
	return key, secret, nil
}
