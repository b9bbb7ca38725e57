// Package cmd implements the listing-manager CLI commands. The serve and
// migrate commands run the server side; the remaining commands are thin
// clients against a running server.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/listing-manager/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "listing-manager",
		Short: "Manage eBay listings from draft to publish",
		Long: "listing-manager runs the listing API server and provides a\n" +
			"command-line client for it: connect an eBay seller account,\n" +
			"search competitor prices, and publish listing drafts.",
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the root command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "config file path (serve and migrate)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL (client commands)")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		String("session", "", "session cookie value for seller-bound commands")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))
	cobra.CheckErr(viper.BindPFlag("session", rootCmd.PersistentFlags().Lookup("session")))

	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(pricingCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(historyCmd())
}

func initConfig() {
	viper.SetEnvPrefix("LM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *apiclient.Client {
	opts := []apiclient.Option{}
	if session := viper.GetString("session"); session != "" {
		opts = append(opts, apiclient.WithSessionCookie(session))
	}
	return apiclient.New(viper.GetString("server"), opts...)
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
