package epic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"shopgifter/internal/model"
	"shopgifter/pkg/apierror"
	"shopgifter/pkg/response"
)

type giftPayload struct {
	OfferID            string   `json:"offerId"`
	Currency           string   `json:"currency"`
	CurrencySubType    string   `json:"currencySubType"`
	ExpectedTotalPrice int      `json:"expectedTotalPrice"`
	GameContext        string   `json:"gameContext"`
	ReceiverAccountIDs []string `json:"receiverAccountIds"`
	GiftWrapTemplateID string   `json:"giftWrapTemplateId"`
	PersonalMessage    string   `json:"personalMessage"`
}

// SubmitGift sends one gift from bot. A fresh token is fetched for every
// call. Any HTTP reply, including rejections, is returned as a response for
// the caller to classify; only failures to get a reply are errors.
func (c *Client) SubmitGift(ctx context.Context, bot model.BotAccount, req model.GiftRequest, timeout time.Duration) (model.GiftResponse, error) {
	token, err := c.Token(ctx, bot)
	if err != nil {
		return model.GiftResponse{}, err
	}

	body, err := json.Marshal(giftPayload{
		OfferID:            req.OfferID,
		Currency:           "MtxCurrency",
		ExpectedTotalPrice: req.Price,
		GameContext:        "Frontend.CatabaScreen",
		ReceiverAccountIDs: []string{req.RecipientID},
	})
	if err != nil {
		return model.GiftResponse{}, fmt.Errorf("encode gift payload: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := fmt.Sprintf("%s/fortnite/api/game/v2/profile/%s/client/GiftCatalogEntry?profileId=common_core",
		c.cfg.MCPBaseURL, url.PathEscape(bot.AccountID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return model.GiftResponse{}, fmt.Errorf("build gift request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token.Token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.GiftResponse{}, apierror.Transport("gift request failed", err)
	}
	data, err := response.Body(resp)
	if err != nil {
		return model.GiftResponse{}, err
	}
	return model.GiftResponse{StatusCode: resp.StatusCode, Body: string(data)}, nil
}
