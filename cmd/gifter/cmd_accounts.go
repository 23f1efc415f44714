package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"shopgifter/internal/model"
	"shopgifter/internal/repository"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var accountsCheck bool

// accountsCmd manages the bot pool
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage the bot account pool",
	Long: `Manage the bot accounts used to send gifts.

Available subcommands:
  add      - Log in with a new account via device code
  list     - List accounts in pool order
  remove   - Remove an account by position or account id
  import   - Import accounts from a JSON or YAML file
  exchange - Print a one-time login link for an account`,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an account via device code login",
	Args:  cobra.NoArgs,
	RunE:  runAccountsAdd,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts in pool order",
	Args:  cobra.NoArgs,
	RunE:  runAccountsList,
}

var accountsRemoveCmd = &cobra.Command{
	Use:   "remove [position|accountId]",
	Short: "Remove an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsRemove,
}

var accountsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import accounts from a JSON or YAML file",
	Long: `Imports accounts from a file holding a list of
{accountId, deviceId, secret, displayName} objects. deviceId and secret are
base64 encoded. Accounts already in the pool are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runAccountsImport,
}

var accountsExchangeCmd = &cobra.Command{
	Use:   "exchange [position|accountId]",
	Short: "Print a one-time login link for an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsExchange,
}

func init() {
	accountsListCmd.Flags().BoolVar(&accountsCheck, "check", false, "Verify credentials and refresh display names")
	accountsCmd.AddCommand(accountsAddCmd, accountsListCmd, accountsRemoveCmd, accountsImportCmd, accountsExchangeCmd)
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		login, err := a.epic.StartDeviceLogin(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, titleStyle.Render("Open this link and log in with the bot account:"))
		fmt.Fprintln(out, "  "+login.VerificationURIComplete)
		fmt.Fprintln(out, mutedStyle.Render("Waiting for the login to complete..."))

		session, err := a.epic.PollDeviceLogin(ctx, login.DeviceCode)
		if err != nil {
			return err
		}
		bot, err := a.epic.CreateDeviceAuth(ctx, session)
		if err != nil {
			return err
		}
		if info, err := a.epic.AccountInfo(ctx, bot); err == nil {
			bot.DisplayName = info.DisplayName
		} else {
			a.logger.Warn("could not read account profile", zap.String("account_id", bot.AccountID), zap.Error(err))
		}

		added, err := a.store.Add(ctx, bot)
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintln(out, warningStyle.Render("Account already in the pool: "+bot.Label()))
			return nil
		}
		fmt.Fprintln(out, successStyle.Render("Added "+bot.Label()))
		return nil
	})
}

// accountStatus is the outcome of a credential check.
type accountStatus struct {
	ok     bool
	detail string
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		ctx := cmd.Context()
		accounts, err := a.store.List(ctx)
		if err != nil {
			return err
		}

		var statuses []accountStatus
		if accountsCheck {
			statuses = checkAccounts(ctx, a, accounts)
		}
		renderAccounts(cmd.OutOrStdout(), accounts, statuses)
		return nil
	})
}

// checkAccounts logs every account in and refreshes stored display names.
// Failures are reported per account, never as an error.
func checkAccounts(ctx context.Context, a *app, accounts []model.BotAccount) []accountStatus {
	statuses := make([]accountStatus, len(accounts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range accounts {
		i := i
		g.Go(func() error {
			info, err := a.epic.AccountInfo(ctx, accounts[i])
			if err != nil {
				statuses[i] = accountStatus{detail: err.Error()}
				return nil
			}
			statuses[i] = accountStatus{ok: true, detail: info.Email}

			if info.DisplayName != "" && info.DisplayName != accounts[i].DisplayName {
				if err := a.store.UpdateDisplayName(ctx, accounts[i].AccountID, info.DisplayName); err != nil {
					a.logger.Warn("failed to store display name", zap.String("account_id", accounts[i].AccountID), zap.Error(err))
				}
				accounts[i].DisplayName = info.DisplayName
			}
			return nil
		})
	}
	_ = g.Wait()
	return statuses
}

func renderAccounts(out io.Writer, accounts []model.BotAccount, statuses []accountStatus) {
	if len(accounts) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No accounts. Add one with 'gifter accounts add'."))
		return
	}

	headers := []string{"#", "NAME", "ACCOUNT ID"}
	if statuses != nil {
		headers = append(headers, "STATUS")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...)
	for i, acc := range accounts {
		row := []string{strconv.Itoa(i + 1), acc.DisplayName, acc.AccountID}
		if statuses != nil {
			row = append(row, statusText(statuses[i]))
		}
		t.Row(row...)
	}
	fmt.Fprintln(out, t.String())
}

func statusText(s accountStatus) string {
	if s.ok {
		return successStyle.Render("ok")
	}
	return errorStyle.Render("failed: " + s.detail)
}

func runAccountsRemove(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		ctx := cmd.Context()
		accounts, err := a.store.List(ctx)
		if err != nil {
			return err
		}
		acc, err := findAccount(accounts, args[0])
		if err != nil {
			return err
		}

		removed, err := a.store.Remove(ctx, acc.AccountID)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("account not found: %s", acc.AccountID)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Removed "+acc.Label()))
		return nil
	})
}

func runAccountsImport(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		accounts, err := repository.ReadAccountsFile(args[0])
		if err != nil {
			return err
		}

		added := 0
		for _, acc := range accounts {
			ok, err := a.store.Add(ctx, acc)
			if err != nil {
				return err
			}
			if ok {
				added++
			} else {
				fmt.Fprintln(out, mutedStyle.Render("skipped existing "+acc.Label()))
			}
		}
		fmt.Fprintf(out, "Imported %d of %d accounts\n", added, len(accounts))
		return nil
	})
}

func runAccountsExchange(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		ctx := cmd.Context()
		accounts, err := a.store.List(ctx)
		if err != nil {
			return err
		}
		acc, err := findAccount(accounts, args[0])
		if err != nil {
			return err
		}

		code, err := a.epic.ExchangeCode(ctx, acc)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Exchange code:"), code)
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Login link:"), a.epic.LoginLink(code))
		return nil
	})
}
