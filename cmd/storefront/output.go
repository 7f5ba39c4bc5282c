package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/storefront-bff/internal/application/otpflow"
	"github.com/storefront-bff/internal/domain"
	"github.com/storefront-bff/internal/pkg/countdown"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printSiteConfig(cfg *domain.SiteConfiguration) {
	fmt.Printf("Site:      %s / %s\n", cfg.SiteNameEn, cfg.SiteNameAr)
	if cfg.TaglineEn != "" {
		fmt.Printf("Tagline:   %s\n", cfg.TaglineEn)
	}
	fmt.Printf("Contact:   %s\n", cfg.ContactEmail)
	fmt.Printf("Support:   %s\n", cfg.SupportEmail)
	if cfg.ContactPhone != "" {
		fmt.Printf("Phone:     %s\n", cfg.ContactPhone)
	}
	if cfg.WhatsAppNumber != "" {
		fmt.Printf("WhatsApp:  %s\n", cfg.WhatsAppNumber)
	}
}

func printBannerTable(w io.Writer, banners []domain.NotificationBanner) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLOCATION\tPRIORITY\tDISMISSIBLE\tAUTO-HIDE\tTITLE")
	for _, b := range banners {
		title := b.TitleEn
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		autoHide := "-"
		if b.AutoHideSeconds > 0 {
			autoHide = countdown.Format(b.AutoHideSeconds)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%t\t%s\t%s\n",
			b.ID,
			b.Location,
			b.Priority,
			b.IsDismissible,
			autoHide,
			title,
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d banners\n", len(banners))
}

// formatSnapshot renders one status line for the verify command.
func formatSnapshot(s otpflow.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", s.State)
	if s.State == otpflow.StateAwaitingInput || s.State == otpflow.StateVerifying {
		fmt.Fprintf(&b, " expires in %s (%s)", countdown.Format(s.ExpiresIn), countdown.SeverityFor(s.ExpiresIn))
		if s.Status != nil {
			fmt.Fprintf(&b, ", %d attempts left", s.Status.AttemptsRemaining)
		}
		if s.CanResend {
			b.WriteString(", resend available")
		} else if s.ResendIn > 0 {
			fmt.Fprintf(&b, ", resend in %s", countdown.Format(s.ResendIn))
		}
	}
	if s.Error != "" {
		fmt.Fprintf(&b, " error: %s", s.Error)
	}
	return b.String()
}
