package main

import (
	"fmt"
	"io"
	"strconv"

	"shopgifter/internal/catalog"
	"shopgifter/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var shopListAll bool

// shopCmd groups storefront commands
var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Inspect the current item shop",
}

var shopListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shop entries in catalog order",
	Args:  cobra.NoArgs,
	RunE:  runShopList,
}

func init() {
	shopListCmd.Flags().BoolVar(&shopListAll, "all", false, "Include entries that cannot be gifted")
	shopCmd.AddCommand(shopListCmd)
}

func runShopList(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		entries, err := a.catalog.FetchEntries(cmd.Context())
		if err != nil {
			return err
		}
		if !shopListAll {
			entries = catalog.Giftable(entries)
		}
		renderShop(cmd.OutOrStdout(), entries)
		return nil
	})
}

func renderShop(out io.Writer, entries []model.ShopEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No entries."))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("#", "NAME", "PRICE", "OFFER", "NOTE")
	for i, e := range entries {
		t.Row(strconv.Itoa(i+1), catalog.DisplayName(e), strconv.Itoa(e.EffectivePrice()), e.OfferID, entryNote(e))
	}
	fmt.Fprintln(out, t.String())
	fmt.Fprintf(out, "%d entries\n", len(entries))
}

func entryNote(e model.ShopEntry) string {
	switch {
	case catalog.IsSpecialTrack(e):
		return "jam track"
	case !e.IsGiftable():
		return "not giftable"
	case e.EffectivePrice() <= 0:
		return "no price"
	}
	return ""
}
