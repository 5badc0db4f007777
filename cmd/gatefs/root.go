package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gatefs/gatefs/pkg/gatefs"
	"github.com/gatefs/gatefs/pkg/gatefs/throttle"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gatefs",
	Short: "Sandboxed, throttled file-system operations",
	Long: `gatefs runs file-system operations through a mediated choke point:
paths are confined to an approved root directory, the number of
concurrently open operations is bounded, and transient descriptor
exhaustion is retried with exponential backoff.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gatefs.yaml)")
	rootCmd.PersistentFlags().String("root", ".", "root directory all operations are confined to")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("max-concurrency", throttle.DefaultMaxConcurrency, "max concurrently executing operations")
	rootCmd.PersistentFlags().Int("max-retries", throttle.DefaultMaxRetries, "retries after a descriptor-exhaustion failure")
	rootCmd.PersistentFlags().Duration("base-delay", throttle.DefaultBaseDelay, "initial retry backoff")
	rootCmd.PersistentFlags().Duration("max-delay", throttle.DefaultMaxDelay, "retry backoff ceiling")

	for _, name := range []string{"root", "log-level", "max-concurrency", "max-retries", "base-delay", "max-delay"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newCatCommand())
	rootCmd.AddCommand(newWriteCommand())
	rootCmd.AddCommand(newAppendCommand())
	rootCmd.AddCommand(newLsCommand())
	rootCmd.AddCommand(newStatCommand())
	rootCmd.AddCommand(newMkdirCommand())
	rootCmd.AddCommand(newRmCommand())
	rootCmd.AddCommand(newCpCommand())
	rootCmd.AddCommand(newMvCommand())
	rootCmd.AddCommand(newExistsCommand())
	rootCmd.AddCommand(newApplyCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".gatefs")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("GATEFS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newMediator builds the mediator all subcommands run against, from the
// merged flag/env/file configuration.
func newMediator() (*gatefs.Mediator, error) {
	level, err := gatefs.LogLevelFromString(viper.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := gatefs.NewLogger(os.Stderr, level)

	cfg := throttle.Config{
		MaxConcurrency: viper.GetInt("max-concurrency"),
		MaxRetries:     viper.GetInt("max-retries"),
		BaseDelay:      viper.GetDuration("base-delay"),
		MaxDelay:       viper.GetDuration("max-delay"),
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = throttle.DefaultBaseDelay
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = throttle.DefaultMaxDelay
	}

	return gatefs.New(viper.GetString("root"),
		gatefs.WithConfig(cfg),
		gatefs.WithLogger(logger),
	)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Print the version number of gatefs`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gatefs version %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
