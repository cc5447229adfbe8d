package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/veracity/internal/logger"
	"github.com/ppiankov/veracity/internal/model"
)

// Version is set at build time with -ldflags "-X github.com/ppiankov/veracity/internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile       string
	verbose       bool
	noCache       bool
	referenceDate string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "veracity",
	Short: "Veracity - explainable credibility scoring for news text",
	Long: `Veracity scores how credible a piece of text looks by fusing three
kinds of evidence:

- internal consistency (contradictions, impossible numbers and dates)
- agreement with a curated table of well-established facts
- emotional and stylistic manipulation signals

An optional external fake-probability estimate (a classifier score or an
LLM) can be fused in. Every point of the final score is traceable to a
finding. Veracity reports signals; it does not decide what is true.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "veracity %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.veracity/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("facts", "", "fact table YAML (default: embedded table)")
	flags.String("lexicon-dir", "", "directory of lexicon YAML files (default: embedded lexicons)")
	flags.StringSlice("languages", nil, "lexicon languages to enable (default: all)")
	flags.BoolVar(&noCache, "no-cache", false, "disable the report cache")
	flags.StringVar(&referenceDate, "reference-date", "", "date temporal rules treat as today (YYYY-MM-DD, default: today)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("knowledge.path", flags.Lookup("facts"))
	_ = viper.BindPFlag("lexicon.dir", flags.Lookup("lexicon-dir"))
	_ = viper.BindPFlag("lexicon.languages", flags.Lookup("languages"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and VERACITY_* variables
func initConfig() {
	// .env supplies API keys; a missing file is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".veracity"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// VERACITY_ESTIMATOR_PROVIDER overrides estimator.provider, and so on
	viper.SetEnvPrefix("VERACITY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("estimator.api_key", "VERACITY_ESTIMATOR_API_KEY")

	if err := registerDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so environment
// variables can override keys absent from the config file
func registerDefaults(cfg model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaults("", tree)
	return nil
}

func setDefaults(prefix string, tree map[string]any) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if sub, ok := value.(map[string]any); ok && len(sub) > 0 {
			setDefaults(full, sub)
			continue
		}
		viper.SetDefault(full, value)
	}
}

// loadConfig resolves flags > env > config file > defaults into a Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	applyAPIKey(&cfg.Estimator)
	return &cfg, nil
}

// applyAPIKey falls back to the provider's conventional environment variable
func applyAPIKey(est *model.EstimatorConfig) {
	switch strings.ToLower(est.Provider) {
	case "openai":
		if est.APIKey == "" {
			est.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if est.APIKey == "" {
			est.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if est.BaseURL == "" {
			est.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}
