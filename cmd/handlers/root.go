/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"blogforge/internal/config"
	"blogforge/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blogforge",
		Short: "Blogforge researches trend-grounded content ideas for blogs.",
		Long: `Blogforge turns a blog's description, its existing posts and a topic query
into content ideas backed by search-trend data.

It expands the query into primary and long-tail keywords, looks up search
interest and related queries for each keyword, and asks the model for
5-10 ideas that fill gaps in the blog. It can also enhance project
descriptions, suggest categories and draft full posts.

Use 'blogforge serve' to expose the same operations over HTTP.`,
		SilenceUsage: true,
	}

	// Initialize configuration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.blogforge.yaml)")

	rootCmd.AddCommand(NewIdeasCmd())
	rootCmd.AddCommand(NewKeywordsCmd())
	rootCmd.AddCommand(NewTrendsCmd())
	rootCmd.AddCommand(NewEnhanceCmd())
	rootCmd.AddCommand(NewCategoriesCmd())
	rootCmd.AddCommand(NewDraftCmd())
	rootCmd.AddCommand(NewProjectCmd())
	rootCmd.AddCommand(NewSavedCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so command output stays pipeable
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("Using config file", "path", used)
	}
}
