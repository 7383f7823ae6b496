package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-assistant/internal/tracing"
)

const (
	app       = "resume-assistant"
	envPrefix = "RESUME_ASSISTANT"
)

type Config struct {
	Corpus    *CorpusConfig    `mapstructure:"corpus"`
	Index     *IndexConfig     `mapstructure:"index"`
	Matching  *MatchingConfig  `mapstructure:"matching"`
	Embedding *EmbeddingConfig `mapstructure:"embedding"`
	AI        *AIConfig        `mapstructure:"ai"`
	Tracing   tracing.Config   `mapstructure:"tracing"`
}

type CorpusConfig struct {
	Path string `mapstructure:"path"`
}

type IndexConfig struct {
	Backend string       `mapstructure:"backend"`
	Path    string       `mapstructure:"path"`
	MinIO   *MinIOConfig `mapstructure:"minio"`
}

type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access-key"`
	SecretKey     string `mapstructure:"secret-key"`
	SecretKeyFile string `mapstructure:"secret-key-file"`
	Bucket        string `mapstructure:"bucket"`
	Object        string `mapstructure:"object"`
	Region        string `mapstructure:"region"`
	Secure        bool   `mapstructure:"secure"`
}

type MatchingConfig struct {
	TopK       int `mapstructure:"top-k"`
	TopMatches int `mapstructure:"top-matches"`
	BatchSize  int `mapstructure:"batch-size"`
}

type EmbeddingConfig struct {
	Provider   string       `mapstructure:"provider"`
	Model      string       `mapstructure:"model"`
	Dimension  int          `mapstructure:"dimension"`
	APIKey     string       `mapstructure:"api-key"`
	APIKeyFile string       `mapstructure:"api-key-file"`
	BaseURL    string       `mapstructure:"base-url"`
	Cache      *CacheConfig `mapstructure:"cache"`
}

type CacheConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	Backend string       `mapstructure:"backend"`
	Redis   *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	DB           int    `mapstructure:"db"`
	TTL          string `mapstructure:"ttl"`
}

type AIConfig struct {
	Provider  string           `mapstructure:"provider"`
	Gemini    *GeminiConfig    `mapstructure:"gemini"`
	OpenAI    *OpenAIConfig    `mapstructure:"openai"`
	Anthropic *AnthropicConfig `mapstructure:"anthropic"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type AnthropicConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
	MaxTokens  int    `mapstructure:"max-tokens"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-assistant matches resumes against a job corpus and runs mock interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-assistant.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("corpus", "", "path to the job corpus csv")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("corpus.path", rootCmd.PersistentFlags().Lookup("corpus"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("corpus.path", "final_cleaned.csv")
	viper.SetDefault("index.backend", "file")
	viper.SetDefault("index.path", "job_embeddings.index")
	viper.SetDefault("index.minio.object", "job_embeddings.index")
	viper.SetDefault("matching.top-k", 5)
	viper.SetDefault("matching.top-matches", 3)
	viper.SetDefault("matching.batch-size", 128)
	viper.SetDefault("embedding.provider", "local")
	viper.SetDefault("embedding.cache.enabled", false)
	viper.SetDefault("embedding.cache.backend", "redis")
	viper.SetDefault("embedding.cache.redis.addr", "localhost:6379")
	viper.SetDefault("embedding.cache.redis.ttl", "168h")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", "localhost:4317")
	viper.SetDefault("tracing.insecure", true)
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Defaults are enough to run locally, so only an explicit or broken config is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
