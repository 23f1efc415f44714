package epic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"shopgifter/internal/model"
	"shopgifter/pkg/apierror"

	"go.uber.org/zap"
)

type tokenReply struct {
	AccessToken string    `json:"access_token"`
	AccountID   string    `json:"account_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (t tokenReply) token() model.AccessToken {
	return model.AccessToken{Token: t.AccessToken, AccountID: t.AccountID, ExpiresAt: t.ExpiresAt}
}

// Token exchanges a bot's device credentials for a fresh access token.
func (c *Client) Token(ctx context.Context, bot model.BotAccount) (model.AccessToken, error) {
	if bot.AccountID == "" || bot.DeviceID == "" || bot.Secret == "" {
		return model.AccessToken{}, apierror.Resolution(fmt.Sprintf("bot %s has no device credentials", bot.Label()))
	}

	ctx, cancel := c.authContext(ctx)
	defer cancel()

	var reply tokenReply
	err := c.postForm(ctx, c.cfg.DeviceClientToken, url.Values{
		"grant_type": {"device_auth"},
		"device_id":  {bot.DeviceID},
		"account_id": {bot.AccountID},
		"secret":     {bot.Secret},
	}, &reply)
	if err != nil {
		return model.AccessToken{}, fmt.Errorf("device_auth token for %s: %w", bot.Label(), err)
	}
	if reply.AccessToken == "" {
		return model.AccessToken{}, apierror.Transport("token reply without access_token", nil)
	}
	return reply.token(), nil
}

// StartDeviceLogin begins the device authorization login and returns the
// code the user must confirm in a browser.
func (c *Client) StartDeviceLogin(ctx context.Context) (model.DeviceLogin, error) {
	ctx, cancel := c.authContext(ctx)
	defer cancel()

	var client tokenReply
	if err := c.postForm(ctx, c.cfg.ClientToken, url.Values{"grant_type": {"client_credentials"}}, &client); err != nil {
		return model.DeviceLogin{}, fmt.Errorf("client_credentials token: %w", err)
	}

	var login model.DeviceLogin
	err := c.bearer(ctx, http.MethodPost, c.accountURL("/account/api/oauth/deviceAuthorization"), client.AccessToken, nil, &login)
	if err != nil {
		return model.DeviceLogin{}, fmt.Errorf("device authorization: %w", err)
	}
	return login, nil
}

// PollDeviceLogin waits for the user to confirm a device login. A 400 reply
// means the login is still pending; any other reply ends the wait.
func (c *Client) PollDeviceLogin(ctx context.Context, deviceCode string) (model.AccessToken, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return model.AccessToken{}, ctx.Err()
		case <-ticker.C:
		}

		token, pending, err := c.pollOnce(ctx, deviceCode)
		if err != nil {
			return model.AccessToken{}, err
		}
		if !pending {
			return token, nil
		}
		c.logger.Debug("device login pending")
	}
}

func (c *Client) pollOnce(ctx context.Context, deviceCode string) (model.AccessToken, bool, error) {
	ctx, cancel := c.authContext(ctx)
	defer cancel()

	var reply tokenReply
	err := c.postForm(ctx, c.cfg.ClientToken, url.Values{
		"grant_type":  {"device_code"},
		"device_code": {deviceCode},
	}, &reply)
	if err != nil {
		if apierror.IsPlatform(err) && statusOf(err) == http.StatusBadRequest {
			return model.AccessToken{}, true, nil
		}
		return model.AccessToken{}, false, fmt.Errorf("device_code token: %w", err)
	}
	return reply.token(), false, nil
}

// CreateDeviceAuth turns a logged-in session into permanent device
// credentials for a new bot account.
func (c *Client) CreateDeviceAuth(ctx context.Context, session model.AccessToken) (model.BotAccount, error) {
	ctx, cancel := c.authContext(ctx)
	defer cancel()

	code, err := c.exchange(ctx, session.Token)
	if err != nil {
		return model.BotAccount{}, err
	}

	var device tokenReply
	err = c.postForm(ctx, c.cfg.DeviceClientToken, url.Values{
		"grant_type":    {"exchange_code"},
		"exchange_code": {code},
	}, &device)
	if err != nil {
		return model.BotAccount{}, fmt.Errorf("exchange_code token: %w", err)
	}

	var created struct {
		DeviceID string `json:"deviceId"`
		Secret   string `json:"secret"`
	}
	target := c.accountURL("/account/api/public/account/%s/deviceAuth", url.PathEscape(session.AccountID))
	if err := c.bearer(ctx, http.MethodPost, target, device.AccessToken, nil, &created); err != nil {
		return model.BotAccount{}, fmt.Errorf("create device auth: %w", err)
	}

	c.logger.Info("device auth created", zap.String("account_id", session.AccountID))
	return model.BotAccount{
		AccountID: session.AccountID,
		DeviceID:  created.DeviceID,
		Secret:    created.Secret,
	}, nil
}

func (c *Client) exchange(ctx context.Context, accessToken string) (string, error) {
	var reply struct {
		Code string `json:"code"`
	}
	if err := c.bearer(ctx, http.MethodGet, c.accountURL("/account/api/oauth/exchange"), accessToken, nil, &reply); err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	if reply.Code == "" {
		return "", apierror.Transport("exchange reply without code", nil)
	}
	return reply.Code, nil
}

func statusOf(err error) int {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
