package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "account-settings",
	Short: "Account settings service",
	Long:  "Backend service for profile, settings, coupons, checkout and identity verification.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
