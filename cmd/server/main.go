package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/clima/internal/utils"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:           "clima",
	Short:         "Organizational climate survey server",
	Long:          "Collects anonymous organizational-climate survey responses and serves the dashboard metrics derived from them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", utils.SafeEnv("CLIMA_CONFIG_DIR", ""), "Directory containing config.yaml and .env")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
