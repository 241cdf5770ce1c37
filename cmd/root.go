package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/career-navigator/internal/server"
)

const (
	app       = "career-navigator"
	envPrefix = "CAREER_NAVIGATOR"
)

type Config struct {
	AI      *AIConfig      `mapstructure:"ai"`
	Storage *StorageConfig `mapstructure:"storage"`
	Cache   *CacheConfig   `mapstructure:"cache"`
	Server  *server.Config `mapstructure:"server"`
}

type AIConfig struct {
	Enabled      bool              `mapstructure:"enabled"`
	Provider     string            `mapstructure:"provider"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Temperature  float32           `mapstructure:"temperature"`
	MaxLogLength int               `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig     `mapstructure:"gemini"`
	Vertex       *VertexConfig     `mapstructure:"vertex"`
	OpenRouter   *OpenRouterConfig `mapstructure:"openrouter"`

	// Dedupe drops repeated careers from model output.
	Dedupe bool `mapstructure:"dedupe"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type VertexConfig struct {
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
	Model    string `mapstructure:"model"`
}

type OpenRouterConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type StorageConfig struct {
	DSN            string `mapstructure:"dsn"`
	DSNFile        string `mapstructure:"dsn-file"`
	MaxConnections int    `mapstructure:"max-connections"`
	MaxIdle        int    `mapstructure:"max-idle"`
}

type CacheConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	// MaxAge ignores stored recommendations older than this; zero keeps them forever.
	MaxAge time.Duration `mapstructure:"max-age"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "career-navigator recommends career paths and learning roadmaps for a user profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"ai.openrouter.api-key":  "OPENROUTER_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"ai.vertex.project":      "GOOGLE_CLOUD_PROJECT",
		"ai.vertex.location":     "GOOGLE_CLOUD_LOCATION",
		"storage.dsn":            "DATABASE_URL",
		"cache.address":          "REDIS_ADDR",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, envPrefix+"_"+envName(key), env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.timeout", "60s")
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("ai.max-log-length", 200)
	viper.SetDefault("ai.dedupe", false)
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("cache.max-age", "168h")
	viper.SetDefault("server.listen", ":8080")
	viper.SetDefault("server.read-timeout", "10s")
	viper.SetDefault("server.write-timeout", "90s")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is career-navigator.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func envName(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func initConfig() {
	// Only serve and recommend read the config.
	if serveCmd.CalledAs() == "" && recommendCmd.CalledAs() == "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

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

	// An explicit config must parse; the default one is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
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
