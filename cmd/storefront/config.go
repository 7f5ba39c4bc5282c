package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the site configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := client.SiteConfig(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching site config: %w", err)
		}
		if jsonOut {
			printJSON(cfg)
			return nil
		}
		printSiteConfig(cfg)
		return nil
	},
}
