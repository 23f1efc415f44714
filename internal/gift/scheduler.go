package gift

import (
	"context"

	"shopgifter/internal/model"
)

// AttemptFunc performs one gift attempt for the bot at index. Drive fills in
// the bot index and account id of the returned record.
type AttemptFunc func(ctx context.Context, index int, bot model.BotAccount) model.AttemptRecord

// ItemReport is the scheduler's verdict for one item.
type ItemReport struct {
	Result    model.ItemResult
	Cursor    int
	Attempts  []model.AttemptRecord
	Cancelled bool
}

// Step is the rotation transition. Success and SkipItem finish the item on the
// current bot; rotating outcomes advance the cursor and finish only when the
// pool runs out. The cursor never moves backwards.
func Step(cursor, poolSize int, outcome model.Outcome) (next int, result model.ItemResult, done bool) {
	if !outcome.Rotates() {
		switch outcome {
		case model.OutcomeSuccess:
			return cursor, model.ItemSent, true
		case model.OutcomeSkipItem:
			return cursor, model.ItemSkipped, true
		}
		// unknown outcomes rotate
	}

	next = cursor + 1
	if next >= poolSize {
		return next, model.ItemPoolExhausted, true
	}
	return next, 0, false
}

// Drive runs the rotation state machine for a single item starting at cursor.
// The returned cursor is the one the next item must start from.
func Drive(ctx context.Context, bots []model.BotAccount, cursor int, attempt AttemptFunc) ItemReport {
	report := ItemReport{Cursor: cursor}

	for {
		if cursor >= len(bots) {
			report.Result = model.ItemPoolExhausted
			report.Cursor = cursor
			return report
		}
		if ctx.Err() != nil {
			report.Result = model.ItemPoolExhausted
			report.Cursor = cursor
			report.Cancelled = true
			return report
		}

		rec := attempt(ctx, cursor, bots[cursor])
		rec.BotIndex = cursor
		rec.AccountID = bots[cursor].AccountID
		report.Attempts = append(report.Attempts, rec)

		// A rotating outcome after cancellation is the interruption itself,
		// not a verdict on this bot, so the cursor stays put.
		if rec.Outcome.Rotates() && ctx.Err() != nil {
			report.Result = model.ItemPoolExhausted
			report.Cursor = cursor
			report.Cancelled = true
			return report
		}

		next, result, done := Step(cursor, len(bots), rec.Outcome)
		cursor = next
		if done {
			report.Result = result
			report.Cursor = cursor
			return report
		}
	}
}
