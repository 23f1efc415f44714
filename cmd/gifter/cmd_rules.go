package main

import (
	"fmt"
	"io"

	"shopgifter/internal/gift"

	"github.com/spf13/cobra"
)

// rulesCmd prints the classifier table
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show how gift responses are classified, in priority order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		renderRules(cmd.OutOrStdout(), gift.Rules())
		return nil
	},
}

func renderRules(out io.Writer, rules []gift.RuleInfo) {
	fmt.Fprintln(out, titleStyle.Render("Response classification (first match wins)"))
	for i, r := range rules {
		outcome := r.Outcome.String()
		fmt.Fprintf(out, "%2d. %-28s %s\n", i+1, r.Name, resultStyle(outcome).Render(outcome))
	}
}
