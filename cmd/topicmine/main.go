// Package main is the entry point for the topicmine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine"
	"github.com/cognicore/topicmine/pkg/topicmine/config"
	"github.com/cognicore/topicmine/pkg/topicmine/embed"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/store"
	"github.com/cognicore/topicmine/pkg/topicmine/store/sqlite"
)

// logger is configured from --log-level before any command runs.
var logger = logging.Discard()

// rootCmd is the base command for the topicmine CLI.
var rootCmd = &cobra.Command{
	Use:   "topicmine",
	Short: "Extract recency-weighted topics from newsletters",
	Long: `topicmine mines the salient topics of a batch of newsletter issues.

Messages are imported from JSONL exports with "ingest" and kept in a local
SQLite database. "extract" ranks topics over a recent window with either the
lexical backend (weighted n-gram frequency) or the semantic backend
(keyphrase embeddings and agglomerative clustering), and "runs" shows the
history of past extractions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(os.Stderr, viper.GetString("log_level"))
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./topicmine.yaml or ~/.config/topicmine/topicmine.yaml)")
	rootCmd.PersistentFlags().String("db", "topicmine.db", "SQLite database path")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("vocabulary", "", "YAML vocabulary override file")

	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("vocabulary", rootCmd.PersistentFlags().Lookup("vocabulary"))

	setDefaults(config.DefaultSettings())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("topicmine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "topicmine"))
		}
	}

	viper.SetEnvPrefix("TOPICMINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := readConfig(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading config file:", err)
	}
}

// readConfig loads the config file; a missing file is not an error
func readConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return nil
	}
	return err
}

// setDefaults registers every settings key so env overrides and Unmarshal see it
func setDefaults(s config.Settings) {
	viper.SetDefault("recency.min_weight", s.Recency.MinWeight)
	viper.SetDefault("recency.max_weight", s.Recency.MaxWeight)
	viper.SetDefault("recency.undated", s.Recency.Undated)
	viper.SetDefault("recency.disabled", s.Recency.Disabled)
	viper.SetDefault("semantic.linkage", s.Semantic.Linkage)
	viper.SetDefault("semantic.candidate_pool", s.Semantic.CandidatePool)
	viper.SetDefault("semantic.ngram_min", s.Semantic.NGramMin)
	viper.SetDefault("semantic.ngram_max", s.Semantic.NGramMax)
	viper.SetDefault("semantic.alt_ngram_min", s.Semantic.AltNGramMin)
	viper.SetDefault("semantic.alt_ngram_max", s.Semantic.AltNGramMax)
	viper.SetDefault("embedder.backend", s.Embedder.Backend)
	viper.SetDefault("embedder.dims", s.Embedder.Dims)
	viper.SetDefault("embedder.endpoint", s.Embedder.Endpoint)
	viper.SetDefault("embedder.model", s.Embedder.Model)
	viper.SetDefault("embedder.timeout", s.Embedder.Timeout)
	viper.SetDefault("embedder.requests_per_second", s.Embedder.RequestsPerSecond)
}

// loadSettings reads the effective settings from file, env and flags
func loadSettings() (config.Settings, error) {
	var s config.Settings
	if err := viper.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// session bundles what a command needs; close releases it all
type session struct {
	engine   *topicmine.Engine
	store    store.Store
	embedder embed.Embedder
	comp     *config.Components
}

func (s *session) close() {
	if s.embedder != nil {
		if err := s.embedder.Close(); err != nil {
			logger.Warn("close embedder", "err", err)
		}
	}
	if err := s.engine.Close(); err != nil {
		logger.Warn("close engine", "err", err)
	}
}

// openSession opens the database, merges its stoplist into the configured
// vocabulary and builds the engine.
func openSession(ctx context.Context, overrides func(*config.Settings)) (*session, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		overrides(&settings)
	}

	st, err := sqlite.OpenSQLite(ctx, viper.GetString("db"))
	if err != nil {
		return nil, err
	}
	extra, err := st.Stopwords(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load stoplist: %w", err)
	}

	loader := config.Loader{Settings: settings, ExtraStopwords: extra, Logger: logger}
	comp, err := loader.Load()
	if err != nil {
		st.Close()
		return nil, err
	}

	engine, err := topicmine.New(topicmine.Options{
		Store:          st,
		Stoplist:       comp.Stoplist,
		Weighter:       comp.Weighter,
		Embedder:       comp.Embedder,
		Linkage:        comp.Linkage,
		AlternateNGram: comp.AlternateNGram,
		Logger:         logger,
	})
	if err != nil {
		comp.Embedder.Close()
		st.Close()
		return nil, err
	}
	return &session{engine: engine, store: st, embedder: comp.Embedder, comp: comp}, nil
}

// availability is implemented by embedders backed by a server
type availability interface {
	Available(ctx context.Context) bool
}

// requireEmbedder fails fast when a remote embedder cannot be reached
func (s *session) requireEmbedder(ctx context.Context) error {
	if a, ok := s.embedder.(availability); ok && !a.Available(ctx) {
		return fmt.Errorf("embedder not reachable: %w", internalerr.ErrBackendUnavailable)
	}
	return nil
}

func loggerFor(cmd *cobra.Command) *log.Logger {
	return logger.With("cmd", cmd.Name())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
