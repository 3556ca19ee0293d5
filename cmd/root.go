package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mazzeh",
	Short: "Mazzeh food ordering backend",
	Long: `Mazzeh is a food ordering marketplace backend: customer and restaurant accounts,
menus, carts, orders and reviews over an HTTP+JSON API.

Settings come from config/config.json (or --config), a .env file and MAZZEH_* variables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a settings file (json, yaml or toml)")
}
