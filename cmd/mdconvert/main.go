// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mdconvert CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mdconvert/internal/envfile"
)

// version is set at build time via ldflags.
var version = "dev"

// envDefaults holds directory defaults resolved from the optional
// .env file at startup.
var envDefaults envfile.Defaults

// rootCmd is the base command for the mdconvert CLI.
var rootCmd = &cobra.Command{
	Use:   "mdconvert",
	Short: "Batch-convert PDF and office documents to Markdown",
	Long: `mdconvert converts PDF and office documents (doc, docx, ppt, pptx) into
Markdown. Office files are rendered to PDF with LibreOffice first; the
actual parsing, OCR, and image extraction are delegated to the MinerU
engine (or the markitdown container image).

A persisted hash database skips files whose content is unchanged since
the last successful run, making repeated batch runs cheap.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envPath, _ := cmd.Flags().GetString("env-file")
		d, err := envfile.Load(envPath)
		if err != nil {
			return fmt.Errorf("loading env file %s: %w", envPath, err)
		}
		envDefaults = d
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./mdconvert.yaml or ~/.config/mdconvert/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "env file with INPUT_FOLDER, OUTPUT_FOLDER, TMP_PDF_FOLDER, HASH_DB_PATH, RECURSIVE")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mdconvert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mdconvert"))
		}
	}

	viper.SetEnvPrefix("MDCONVERT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
