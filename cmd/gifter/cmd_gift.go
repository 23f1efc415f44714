package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"shopgifter/internal/events"
	"shopgifter/internal/gift"
	"shopgifter/internal/model"

	"github.com/spf13/cobra"
)

var (
	giftItemRecipient string
	giftShopRecipient string
)

// giftCmd groups the gifting commands
var giftCmd = &cobra.Command{
	Use:   "gift",
	Short: "Send shop items as gifts",
}

var giftItemCmd = &cobra.Command{
	Use:   "item [reference]",
	Short: "Gift one shop entry",
	Long: `Gifts a single shop entry. The reference is either an item shop URL
(https://www.fortnite.com/item-shop/<kind>/<slug>) or a plain item name.

Example:
  gifter gift item "https://www.fortnite.com/item-shop/emotes/femininomenon" --to SomePlayer`,
	Args: cobra.ExactArgs(1),
	RunE: runGiftItem,
}

var giftShopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Gift every giftable entry in the current shop",
	Long: `Walks the current shop in order and gifts every giftable entry with a
price. Bots rotate on payment and gift limit errors; the run stops once every
bot is used up.`,
	Args: cobra.NoArgs,
	RunE: runGiftShop,
}

func init() {
	giftItemCmd.Flags().StringVar(&giftItemRecipient, "to", "", "Recipient display name or account id")
	_ = giftItemCmd.MarkFlagRequired("to")
	giftShopCmd.Flags().StringVar(&giftShopRecipient, "to", "", "Recipient display name or account id")
	_ = giftShopCmd.MarkFlagRequired("to")
	giftCmd.AddCommand(giftItemCmd, giftShopCmd)
}

func runGiftItem(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		bots, err := a.bots(ctx)
		if err != nil {
			return err
		}
		subscribeProgress(a.events, out)

		report, entry, err := a.gifter.GiftItem(ctx, bots, args[0], giftItemRecipient)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, formatItemReport(entry.OfferID, report))
		if report.Cancelled {
			return errInterrupted
		}
		if report.Result != model.ItemSent {
			return fmt.Errorf("gift not sent: %s", report.Result)
		}
		return nil
	})
}

func runGiftShop(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		bots, err := a.bots(ctx)
		if err != nil {
			return err
		}
		subscribeProgress(a.events, out)

		stats, err := a.gifter.GiftShop(ctx, bots, giftShopRecipient)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, formatRunStats(stats))
		if stats.Cancelled {
			return errInterrupted
		}
		return nil
	})
}

var errInterrupted = errors.New("run interrupted")

// subscribeProgress prints one line per finished item.
func subscribeProgress(m *events.Manager, out io.Writer) {
	m.Subscribe(events.EventRunStarted, func(ctx context.Context, e events.Event) error {
		d, ok := e.Data.(events.RunStartedData)
		if !ok {
			return nil
		}
		_, err := fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Gifting %d items to %s with %d bots", d.Items, d.RecipientID, d.Bots)))
		return err
	})
	m.Subscribe(events.EventItemFinished, func(ctx context.Context, e events.Event) error {
		d, ok := e.Data.(events.ItemFinishedData)
		if !ok {
			return nil
		}
		label := resultStyle(d.Result.String()).Render(fmt.Sprintf("%-14s", d.Result))
		if d.Cancelled {
			label = warningStyle.Render(fmt.Sprintf("%-14s", "interrupted"))
		}
		_, err := fmt.Fprintf(out, "  %s %s %s\n",
			label,
			d.ItemName,
			mutedStyle.Render(fmt.Sprintf("(bot #%d)", d.Cursor+1)))
		return err
	})
}

func formatItemReport(offerID string, report gift.ItemReport) string {
	if report.Cancelled {
		return fmt.Sprintf("%s %s after %d attempt(s)",
			labelStyle.Render(offerID), warningStyle.Render("interrupted"), len(report.Attempts))
	}
	return fmt.Sprintf("%s %s after %d attempt(s), next bot #%d",
		labelStyle.Render(offerID),
		resultStyle(report.Result.String()).Render(report.Result.String()),
		len(report.Attempts),
		report.Cursor+1)
}

func formatRunStats(s model.RunStats) string {
	status := successStyle.Render("completed")
	switch {
	case s.Cancelled:
		status = warningStyle.Render("cancelled")
	case s.Exhausted:
		status = errorStyle.Render("bot pool exhausted")
	}
	return fmt.Sprintf("Run %s %s: %d considered, %d attempted, %d sent, %d skipped",
		mutedStyle.Render(s.RunID), status, s.Considered, s.Attempted, s.Sent, s.Skipped)
}
