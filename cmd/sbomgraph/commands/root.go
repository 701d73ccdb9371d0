// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/l3montree-dev/sbomgraph/cmd/sbomgraph/config"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

const (
	defaultConfigFilename = ".sbomgraph"
)

var RootCmd = &cobra.Command{
	SilenceUsage:      true,
	Use:               "sbomgraph",
	Short:             "Compare the dependency graphs of SBOM generators",
	Version:           version,
	DisableAutoGenTag: true,
	Long: `Compare the dependency graphs of SBOM generators

sbomgraph turns CycloneDX SBOMs produced by different tools for the same
repositories into dependency graphs, analyzes their structure and compares
the tools against each other. Configuration can be provided via a
./.sbomgraph config file or environment variables (prefix SBOMGRAPH_).`,
	Example: `  # Build the graphs of every sbom below ./standardized_boms
  sbomgraph build

  # Analyze the graphs and compare the tools of every repository
  sbomgraph analyze
  sbomgraph compare --first-vs-rest --baseline sbomgold

  # Compare two repositories only
  sbomgraph compare --specific repo1,repo2`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init the logger - get the level
		level, err := cmd.Flags().GetString("logLevel")
		if err != nil {
			return err
		}

		switch level {
		case "debug":
			initLogger(slog.LevelDebug)
		case "info":
			initLogger(slog.LevelInfo)
		case "warn":
			initLogger(slog.LevelWarn)
		case "error":
			initLogger(slog.LevelError)
		default:
			initLogger(slog.LevelInfo)
		}

		return initializeConfig(cmd)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sbomgraph\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Built:      %s\n", date)
			fmt.Printf("Built by:   %s\n", builtBy)
		},
	}

	RootCmd.AddCommand(
		versionCmd,
		NewBuildCommand(),
		NewAnalyzeCommand(),
		NewCompareCommand(),
		NewSimilarityCommand(),
		NewPackagesCommand(),
		NewVulnsCommand(),
		NewDirectDepsCommand(),
		NewStandardizeCommand(),
	)

	RootCmd.PersistentFlags().StringP("logLevel", "l", "info", "Set the log level. Options: debug, info, warn, error")
	RootCmd.PersistentFlags().String("sbomDir", "standardized_boms", "Directory containing one sub directory of sboms per repository")
	RootCmd.PersistentFlags().String("outputDir", "graphoutput", "Directory the graphs and their properties are written to")
	RootCmd.PersistentFlags().String("analysisDir", "package_analysis", "Directory the cross repository reports are written to")
	RootCmd.PersistentFlags().Int("workers", 4, "Number of repositories and tools processed concurrently")
	RootCmd.PersistentFlags().Int("cacheSize", 128, "Number of loaded graphs kept in memory")
}

// initLogger initializes the logger with a tint handler.
func initLogger(level slog.Leveler) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	))
}

func initializeConfig(cmd *cobra.Command) error {
	// a missing .env file is fine
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	viper.SetConfigName(defaultConfigFilename)
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/sbomgraph/")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		slog.Debug("no config file found")
	}

	viper.SetEnvPrefix("SBOMGRAPH")
	// environment variables can't have dashes in them
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	bindFlags(cmd)

	return config.ParseBaseConfig()
}

// Bind each cobra flag to its associated viper configuration (config file and environment variable)
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		configName := f.Name

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && viper.IsSet(configName) {
			val := viper.Get(configName)
			cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)) // nolint: errcheck
		}

		if err := viper.BindPFlag(configName, f); err != nil {
			slog.Error("could not bind flag to viper", "err", err)
		}
	})
}
