// Command storefront is a terminal client for the storefront BFF. It drives
// the same OTP and banner flows the web client does, which makes it handy
// for smoke-testing a deployment.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/storefront-bff/internal/infrastructure/backend"
)

var (
	serverURL string
	visitorID string
	token     string
	timeout   time.Duration
	jsonOut   bool

	client *backend.Client
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront BFF command-line client",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if serverURL == "" {
			return fmt.Errorf("--server must not be empty")
		}
		opts := []backend.Option{}
		if visitorID != "" {
			opts = append(opts, backend.WithVisitorID(visitorID))
		}
		if token != "" {
			opts = append(opts, backend.WithToken(token))
		}
		client = backend.NewClient(serverURL, timeout, opts...)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if client != nil && visitorID == "" && client.VisitorID() != "" && !jsonOut {
			fmt.Fprintf(os.Stderr, "visitor: %s\n", client.VisitorID())
		}
	},
}

func init() {
	defaultServer := os.Getenv("STOREFRONT_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:3000"
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "BFF base URL (env: STOREFRONT_SERVER)")
	rootCmd.PersistentFlags().StringVar(&visitorID, "visitor", os.Getenv("STOREFRONT_VISITOR"), "Visitor ID to send as X-Visitor-ID")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("STOREFRONT_TOKEN"), "Bearer token for signed-in requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(bannersCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
