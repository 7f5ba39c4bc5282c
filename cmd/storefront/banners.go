package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/storefront-bff/internal/application/banner"
	"github.com/storefront-bff/internal/domain"
)

var bannersCmd = &cobra.Command{
	Use:   "banners",
	Short: "List, dismiss and watch notification banners",
}

var bannersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the banners visible to this visitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		location, _ := cmd.Flags().GetString("location")

		banners, err := client.Banners(cmd.Context(), location)
		if err != nil {
			return fmt.Errorf("listing banners: %w", err)
		}
		if jsonOut {
			printJSON(banners)
			return nil
		}
		printBannerTable(os.Stdout, banners)
		return nil
	},
}

var bannersDismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Dismiss a banner for this visitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid banner id %q", args[0])
		}
		if err := client.DismissBanner(cmd.Context(), id); err != nil {
			return fmt.Errorf("dismissing banner %d: %w", id, err)
		}
		if !jsonOut {
			fmt.Printf("dismissed banner %d\n", id)
		}
		return nil
	},
}

var bannersWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show banners and dismiss auto-hiding ones when their time runs out",
	RunE: func(cmd *cobra.Command, args []string) error {
		location, _ := cmd.Flags().GetString("location")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		banners, err := client.Banners(ctx, location)
		if err != nil {
			return fmt.Errorf("listing banners: %w", err)
		}
		printBannerTable(os.Stdout, banners)
		return watchBanners(ctx, banners, func(id int) error {
			return client.DismissBanner(context.WithoutCancel(ctx), id)
		})
	},
}

// watchBanners blocks until every auto-hiding banner has been dismissed
// through dismiss, or ctx is done.
func watchBanners(ctx context.Context, banners []domain.NotificationBanner, dismiss func(int) error, opts ...banner.AutoHideOption) error {
	pending := make(map[int]bool)
	for _, b := range banners {
		if b.AutoHideSeconds > 0 {
			pending[b.ID] = true
		}
	}

	hidden := make(chan int, len(pending))
	hider := banner.NewAutoHider(func(id int) {
		if err := dismiss(id); err != nil {
			fmt.Fprintf(os.Stderr, "Error dismissing banner %d: %v\n", id, err)
		} else {
			fmt.Printf("banner %d hidden\n", id)
		}
		hidden <- id
	}, opts...)
	defer hider.Stop()
	hider.Track(banners)

	for len(pending) > 0 {
		select {
		case id := <-hidden:
			delete(pending, id)
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

func init() {
	bannersListCmd.Flags().String("location", "", "Banner location (top, home, checkout)")
	bannersWatchCmd.Flags().String("location", domain.BannerLocationTop, "Banner location (top, home, checkout)")

	bannersCmd.AddCommand(bannersListCmd)
	bannersCmd.AddCommand(bannersDismissCmd)
	bannersCmd.AddCommand(bannersWatchCmd)
}
