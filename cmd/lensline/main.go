package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// globals is the per-invocation state shared by every subcommand.
type globals struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
}

func newRootCmd() *cobra.Command {
	g := &globals{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "lensline",
		Short: "🔍 Deepfake detection from the command line",
		Long: `lensline: analyze images for signs of manipulation, keep a history of
verdicts, and review it from the terminal.

When the detection service is unreachable lensline still records a clearly
labeled placeholder result so your history stays complete.`,
		SilenceUsage:      true,
		PersistentPreRunE: g.initConfig,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&g.cfgFile, "config", "", "config file (default: $HOME/.config/lensline/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics to this textfile after the command")

	// Bind flags to viper
	_ = g.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = g.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = g.v.BindPFlag("metrics.textfile", rootCmd.PersistentFlags().Lookup("metrics-file"))

	// Add commands
	rootCmd.AddCommand(loginCmd(g))
	rootCmd.AddCommand(signupCmd(g))
	rootCmd.AddCommand(logoutCmd(g))
	rootCmd.AddCommand(demoCmd(g))
	rootCmd.AddCommand(whoamiCmd(g))
	rootCmd.AddCommand(profileCmd(g))
	rootCmd.AddCommand(analyzeCmd(g))
	rootCmd.AddCommand(historyCmd(g))
	rootCmd.AddCommand(statsCmd(g))
	rootCmd.AddCommand(settingsCmd(g))
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(dashboardCmd(g))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (g *globals) initConfig(_ *cobra.Command, _ []string) error {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if g.cfgFile != "" {
		g.v.SetConfigFile(g.cfgFile)
	} else {
		g.v.AddConfigPath(config.ConfigDir())
		g.v.AddConfigPath(".")
		g.v.SetConfigName("config")
		g.v.SetConfigType("yaml")
	}

	// Environment variables: LENSLINE_API_BASE_URL overrides api.base_url.
	g.v.SetEnvPrefix(strings.ToUpper(config.AppName))
	g.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	g.v.AutomaticEnv()

	config.SetDefaults(g.v)

	if err := g.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := common.SetupLogger(g.v.GetString("logging.level"), g.v.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	cfg, err := config.Load(g.v)
	if err != nil {
		return err
	}
	g.cfg = cfg

	slog.Debug("Configuration loaded",
		"config_file", filepath.Base(g.v.ConfigFileUsed()),
		"api", cfg.API.BaseURL,
		"offline", cfg.API.Offline,
		"database", cfg.Database.Path)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printf(cmd.OutOrStdout(), "lensline %s\n", version)
		},
	}
}
