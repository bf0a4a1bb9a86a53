// riskfold trains the loan repayment model stack and writes a scored
// submission file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/riskfold/riskfold/pkg/log"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "riskfold",
		Short: "Loan repayment probability pipeline",
		Long: `riskfold trains a stack of gradient-boosted models on loan applicant
data and predicts repayment probabilities: it imputes the loan term from an
external reference table, derives payment and risk features, target-encodes
the categorical columns fold by fold, trains three boosters under one
stratified split, and blends them on out-of-fold predictions.`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./riskfold.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(trainCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("riskfold")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RISKFOLD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	log.Setup(viper.GetString("logging.level"), viper.GetString("logging.format"), os.Stderr)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the riskfold version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("riskfold %s\n", version)
		},
	}
}
