package gift

import (
	"context"
	"time"

	"shopgifter/internal/model"
)

// CatalogSource supplies the current storefront entries. An unavailable
// storefront yields an empty slice.
type CatalogSource interface {
	Fetch(ctx context.Context) []model.ShopEntry
}

// GiftSubmitter sends one gift from one bot. A returned error means the
// submission never produced a response (transport, timeout, token).
type GiftSubmitter interface {
	SubmitGift(ctx context.Context, bot model.BotAccount, req model.GiftRequest, timeout time.Duration) (model.GiftResponse, error)
}

// RecipientResolver maps a display name to an account id using a bot's credentials.
type RecipientResolver interface {
	ResolveRecipient(ctx context.Context, bot model.BotAccount, name string) (string, error)
}

// HistoryRecorder persists gift attempts.
type HistoryRecorder interface {
	RecordAttempt(ctx context.Context, rec model.GiftRecord) error
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
