package main

import "github.com/spf13/cobra"

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard summary as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()
		return printJSON(cmd.OutOrStdout(), a.dashboard.Summary())
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
