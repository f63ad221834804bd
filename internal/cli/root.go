// Package cli implements the claimassist command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/logging"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "v0.3.0"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimassist",
	Short: "claimassist - insurance claim denial analysis and appeal drafting",
	Long: `claimassist reads a health insurance claim rejection letter, explains the
denial codes against a knowledge base of Indian insurance denials, and runs a
six-stage model analysis that ends in a reviewed appeal letter.

The letter is a draft. Check every fact against your documents before you
send it to the insurer, the Insurance Ombudsman or a Consumer Commission.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(verbose || viper.GetBool("output.verbose"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "claimassist %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimassist/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".claimassist"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	registerDefaults(viper.GetViper())

	// Read in environment variables that match CLAIMASSIST_*
	viper.SetEnvPrefix("CLAIMASSIST")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
