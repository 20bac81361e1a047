package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/logger"
	"github.com/spigell/salary-spy/internal/secrets"
	"github.com/spigell/salary-spy/internal/store"
)

const (
	app = "salary-spy"

	defaultServerAddress = ":8080"
)

type Config struct {
	Store  *StoreConfig  `mapstructure:"store"`
	Voice  *VoiceConfig  `mapstructure:"voice"`
	Server *ServerConfig `mapstructure:"server"`
}

type StoreConfig struct {
	Driver  string        `mapstructure:"driver"`
	URL     string        `mapstructure:"url"`
	URLFile string        `mapstructure:"url-file"`
	Key     string        `mapstructure:"key"`
	KeyFile string        `mapstructure:"key-file"`
	Table   string        `mapstructure:"table"`
	Timeout time.Duration `mapstructure:"timeout"`
	Limit   int           `mapstructure:"limit"`
}

type VoiceConfig struct {
	PublicKey     string `mapstructure:"public-key"`
	PublicKeyFile string `mapstructure:"public-key-file"`
	AssistantID   string `mapstructure:"assistant-id"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

var envBindings = map[string][]string{
	"store.driver":       {"SALARY_SPY_STORE_DRIVER"},
	"store.url":          {"SUPABASE_URL"},
	"store.url-file":     {"SUPABASE_URL_FILE"},
	"store.key":          {"SUPABASE_KEY"},
	"store.key-file":     {"SUPABASE_KEY_FILE"},
	"voice.public-key":   {"VAPI_PUBLIC_KEY"},
	"voice.assistant-id": {"VAPI_ASSISTANT_ID"},
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "salary-spy looks up salary records for a company and role and falls back to market estimates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, envs := range envBindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			log.Fatalf("binding %v environment variables: %v", envs, err)
		}
	}

	viper.SetDefault("server.address", defaultServerAddress)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is salary-spy.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// .env is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without a config file everything comes from the environment.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Store == nil {
		config.Store = &StoreConfig{}
	}
	if config.Voice == nil {
		config.Voice = &VoiceConfig{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if strings.TrimSpace(config.Server.Address) == "" {
		config.Server.Address = defaultServerAddress
	}

	return config, nil
}

// GatewayConfig resolves the store credentials. Absent credentials leave the
// fields empty, which the gateway reports as demo mode.
func (c *Config) GatewayConfig(logger *zap.Logger) store.Config {
	sc := c.Store
	if sc == nil {
		sc = &StoreConfig{}
	}

	cfg := store.Config{
		Driver:  sc.Driver,
		Table:   sc.Table,
		Timeout: sc.Timeout,
		Limit:   sc.Limit,
	}

	for _, s := range []struct {
		src    secrets.Source
		target *string
	}{
		{src: secrets.Source{Name: "store url", Value: sc.URL, File: sc.URLFile}, target: &cfg.URL},
		{src: secrets.Source{Name: "store key", Value: sc.Key, File: sc.KeyFile}, target: &cfg.Key},
	} {
		secret := secrets.Lookup(s.src)
		if !secret.Present() {
			logger.Debug("credential is absent", zap.String("name", secret.Name), zap.Error(secret.Err))
			continue
		}
		*s.target = secret.Value
	}

	return cfg
}

// VoiceEnabled reports whether both voice credentials resolve.
func (c *Config) VoiceEnabled() bool {
	if c.Voice == nil {
		return false
	}

	key := secrets.Lookup(secrets.Source{Name: "voice public key", Value: c.Voice.PublicKey, File: c.Voice.PublicKeyFile})
	assistant := secrets.Lookup(secrets.Source{Name: "voice assistant id", Value: c.Voice.AssistantID})

	return key.Present() && assistant.Present()
}

// bootstrap builds the logger, the config and the shared store gateway.
func bootstrap(ctx context.Context) (*zap.Logger, *Config, *store.Gateway) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	gateway := store.Open(ctx, config.GatewayConfig(logger), logger)

	return logger, config, gateway
}
