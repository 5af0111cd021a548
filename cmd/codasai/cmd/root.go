// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     cmd
// Description: Root command, configuration and logger setup
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	mdwlog "github.com/msto63/codasai/foundation/core/log"
	"github.com/msto63/codasai/pkg/core/config"
	"github.com/msto63/codasai/pkg/core/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	verbose       bool
	projectDir    string
	workspaceDir  string
	appConfig     *config.Config
	logFileCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "codasai",
	Short: "codasai - deep-link code guide viewer",
	Long: `codasai shows the source files of a code guide and reacts to
deep links of the form

  #csai:highlight file="src/main.rs" from="fn main" to="^}"

Links are dispatched to actions (open_file, highlight) that update the
view. The preview server pushes views to browsers over a websocket, the
terminal viewer renders them in place.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFileCloser != nil {
			logFileCloser.Close()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $CODASAI_CONFIG or ./codasai.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "guide project directory")
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "", "workspace directory (default: <project>/workspace)")
}

// setup loads .env, the configuration and installs the default logger
func setup(cmd *cobra.Command, args []string) error {
	// A missing .env is fine
	_ = godotenv.Load()

	var err error
	if cfgFile != "" {
		appConfig, err = config.Load(cfgFile)
	} else {
		appConfig, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	if projectDir != "" {
		appConfig.Viewer.Project = projectDir
		appConfig.Viewer.Workspace = filepath.Join(projectDir, "workspace")
	}
	if workspaceDir != "" {
		appConfig.Viewer.Workspace = workspaceDir
	}

	logCfg := logging.DefaultLoggerConfig(appConfig.General.Name)
	logCfg.Level = appConfig.General.LogLevel
	logCfg.Format = appConfig.General.LogFormat
	logCfg.File = appConfig.General.LogFile
	if verbose {
		logCfg.Level = "debug"
	}

	var logger *mdwlog.Logger
	logger, logFileCloser = logging.NewLogger(logCfg)
	mdwlog.SetDefault(logger)
	return nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
