package epic

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"shopgifter/internal/model"
	"shopgifter/pkg/apierror"

	"go.uber.org/zap"
)

// ResolveRecipient looks a display name up and returns its account id.
// Lookups are cached by lower-cased name.
func (c *Client) ResolveRecipient(ctx context.Context, bot model.BotAccount, name string) (string, error) {
	key := "recipient:" + strings.ToLower(name)

	raw, err := c.cache.GetOrSet(ctx, key, c.cfg.RecipientCacheTTL, func() ([]byte, error) {
		id, err := c.lookupDisplayName(ctx, bot, name)
		if err != nil {
			return nil, err
		}
		return []byte(id), nil
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (c *Client) lookupDisplayName(ctx context.Context, bot model.BotAccount, name string) (string, error) {
	token, err := c.Token(ctx, bot)
	if err != nil {
		return "", err
	}

	ctx, cancel := c.authContext(ctx)
	defer cancel()

	var account model.AccountInfo
	target := c.accountURL("/account/api/public/account/displayName/%s", url.PathEscape(name))
	if err := c.bearer(ctx, http.MethodGet, target, token.Token, nil, &account); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return "", apierror.WrapResolution(fmt.Sprintf("no account named %q", name), err)
		}
		return "", fmt.Errorf("lookup display name %q: %w", name, err)
	}
	if account.ID == "" {
		return "", apierror.Resolution(fmt.Sprintf("no account named %q", name))
	}

	c.logger.Debug("display name resolved", zap.String("name", name), zap.String("account_id", account.ID))
	return account.ID, nil
}

// AccountInfo fetches the bot's own public profile.
func (c *Client) AccountInfo(ctx context.Context, bot model.BotAccount) (model.AccountInfo, error) {
	token, err := c.Token(ctx, bot)
	if err != nil {
		return model.AccountInfo{}, err
	}

	ctx, cancel := c.authContext(ctx)
	defer cancel()

	var reply struct {
		model.AccountInfo
		Name string `json:"name"`
	}
	target := c.accountURL("/account/api/public/account/%s", url.PathEscape(bot.AccountID))
	if err := c.bearer(ctx, http.MethodGet, target, token.Token, nil, &reply); err != nil {
		return model.AccountInfo{}, fmt.Errorf("account info for %s: %w", bot.Label(), err)
	}

	info := reply.AccountInfo
	if info.DisplayName == "" {
		info.DisplayName = reply.Name
	}
	if info.ID == "" {
		info.ID = bot.AccountID
	}
	return info, nil
}

// ExchangeCode returns a one-time exchange code for the bot's session.
func (c *Client) ExchangeCode(ctx context.Context, bot model.BotAccount) (string, error) {
	token, err := c.Token(ctx, bot)
	if err != nil {
		return "", err
	}

	ctx, cancel := c.authContext(ctx)
	defer cancel()

	return c.exchange(ctx, token.Token)
}
