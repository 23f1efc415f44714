package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"shopgifter/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	pruneAge     time.Duration
)

// historyCmd shows the gift attempt ledger
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent gift attempts, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete recorded attempts older than a retention window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			deleted, err := a.store.PruneAttempts(cmd.Context(), pruneAge)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d attempts older than %s\n", deleted, pruneAge)
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of attempts to show")
	historyPruneCmd.Flags().DurationVar(&pruneAge, "older-than", 30*24*time.Hour, "Retention window")
	historyCmd.AddCommand(historyPruneCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		records, err := a.store.ListAttempts(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		renderHistory(cmd.OutOrStdout(), records)
		return nil
	})
}

func renderHistory(out io.Writer, records []model.GiftRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No gift attempts recorded."))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("TIME", "ITEM", "PRICE", "BOT", "RECIPIENT", "OUTCOME", "HTTP")
	for _, r := range records {
		status := "-"
		if r.StatusCode > 0 {
			status = strconv.Itoa(r.StatusCode)
		}
		t.Row(
			r.CreatedAt.Local().Format(time.DateTime),
			r.ItemName,
			strconv.Itoa(r.Price),
			shortID(r.AccountID),
			shortID(r.RecipientID),
			resultStyle(r.Outcome).Render(r.Outcome),
			status,
		)
	}
	fmt.Fprintln(out, t.String())
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
