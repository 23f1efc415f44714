package model

import "time"

// Outcome is the classified result of a single gift attempt.
type Outcome int

const (
	// OutcomeSuccess means the gift was delivered.
	OutcomeSuccess Outcome = iota + 1
	// OutcomeRotateBot means this bot cannot complete this item; try the next bot on the same item.
	OutcomeRotateBot
	// OutcomeSkipItem means no bot can gift this item to this recipient; move on, keep the bot.
	OutcomeSkipItem
	// OutcomeFailure is a transport, timeout or token failure. It rotates like OutcomeRotateBot.
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRotateBot:
		return "rotate_bot"
	case OutcomeSkipItem:
		return "skip_item"
	case OutcomeFailure:
		return "failure"
	}
	return "unknown"
}

// Rotates reports whether the outcome advances the bot cursor.
func (o Outcome) Rotates() bool {
	return o == OutcomeRotateBot || o == OutcomeFailure
}

// ItemResult is the terminal state of one item after the scheduler is done with it.
type ItemResult int

const (
	ItemSent ItemResult = iota + 1
	ItemSkipped
	ItemPoolExhausted
)

func (r ItemResult) String() string {
	switch r {
	case ItemSent:
		return "sent"
	case ItemSkipped:
		return "skipped"
	case ItemPoolExhausted:
		return "pool_exhausted"
	}
	return "unknown"
}

// GiftRequest is everything needed to submit one gift, minus the sender.
type GiftRequest struct {
	OfferID     string
	Price       int
	RecipientID string
	ItemName    string
}

// GiftResponse is the raw upstream reply to a gift submission.
type GiftResponse struct {
	StatusCode int
	Body       string
}

// AttemptRecord describes one bot's attempt at one item.
type AttemptRecord struct {
	BotIndex   int
	AccountID  string
	Outcome    Outcome
	StatusCode int
	Err        error
	Duration   time.Duration
}

// RunStats aggregates one orchestrator invocation. Reset every run.
type RunStats struct {
	RunID      string `json:"run_id"`
	Considered int    `json:"considered"`
	Attempted  int    `json:"attempted"`
	Sent       int    `json:"sent"`
	Skipped    int    `json:"skipped"`
	Cursor     int    `json:"cursor"`
	Exhausted  bool   `json:"exhausted"`
	Cancelled  bool   `json:"cancelled"`
}

// GiftRecord is a persisted ledger row for one attempt.
type GiftRecord struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	AccountID   string    `json:"account_id"`
	RecipientID string    `json:"recipient_id"`
	OfferID     string    `json:"offer_id"`
	ItemName    string    `json:"item_name"`
	Price       int       `json:"price"`
	Outcome     string    `json:"outcome"`
	StatusCode  int       `json:"status_code"`
	CreatedAt   time.Time `json:"created_at"`
}
