package gift

import (
	"context"
	"testing"

	"shopgifter/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pool(n int) []model.BotAccount {
	bots := make([]model.BotAccount, n)
	for i := range bots {
		bots[i] = model.BotAccount{AccountID: string(rune('a'+i)) + "0000000000000000000000000000000"}
	}
	return bots
}

// scripted returns an AttemptFunc that yields outcomes in order and records
// the bot indexes it was called with.
func scripted(outcomes []model.Outcome, indexes *[]int) AttemptFunc {
	n := 0
	return func(ctx context.Context, index int, bot model.BotAccount) model.AttemptRecord {
		*indexes = append(*indexes, index)
		o := outcomes[n%len(outcomes)]
		n++
		return model.AttemptRecord{Outcome: o}
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name       string
		cursor     int
		pool       int
		outcome    model.Outcome
		wantNext   int
		wantResult model.ItemResult
		wantDone   bool
	}{
		{"success keeps bot", 1, 3, model.OutcomeSuccess, 1, model.ItemSent, true},
		{"skip keeps bot", 2, 3, model.OutcomeSkipItem, 2, model.ItemSkipped, true},
		{"rotate advances", 0, 3, model.OutcomeRotateBot, 1, 0, false},
		{"failure advances", 1, 3, model.OutcomeFailure, 2, 0, false},
		{"rotate on last bot exhausts", 2, 3, model.OutcomeRotateBot, 3, model.ItemPoolExhausted, true},
		{"failure on single bot exhausts", 0, 1, model.OutcomeFailure, 1, model.ItemPoolExhausted, true},
		{"unknown outcome rotates", 0, 3, model.Outcome(0), 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, result, done := Step(tt.cursor, tt.pool, tt.outcome)
			assert.Equal(t, tt.wantNext, next)
			assert.Equal(t, tt.wantDone, done)
			if tt.wantDone {
				assert.Equal(t, tt.wantResult, result)
			}
		})
	}
}

func TestDriveCursorIsMonotonicUnderRotation(t *testing.T) {
	bots := pool(4)
	var indexes []int
	attempt := scripted([]model.Outcome{model.OutcomeRotateBot}, &indexes)

	cursor := 0
	for i := 0; i < 3; i++ {
		report := Drive(context.Background(), bots, cursor, attempt)
		require.GreaterOrEqual(t, report.Cursor, cursor)
		cursor = report.Cursor
	}

	assert.Equal(t, []int{0, 1, 2, 3}, indexes)
	assert.Equal(t, 4, cursor)
}

func TestDriveCursorNeverResetsAcrossItems(t *testing.T) {
	bots := pool(3)
	var indexes []int
	attempt := scripted([]model.Outcome{
		model.OutcomeRotateBot, model.OutcomeSuccess, // item 1: bot 0 then bot 1
		model.OutcomeSkipItem,                        // item 2: bot 1
		model.OutcomeFailure, model.OutcomeSuccess,   // item 3: bot 1 then bot 2
	}, &indexes)

	cursor := 0
	var results []model.ItemResult
	for i := 0; i < 3; i++ {
		report := Drive(context.Background(), bots, cursor, attempt)
		cursor = report.Cursor
		results = append(results, report.Result)
	}

	assert.Equal(t, []int{0, 1, 1, 1, 2}, indexes)
	assert.Equal(t, []model.ItemResult{model.ItemSent, model.ItemSkipped, model.ItemSent}, results)
	assert.Equal(t, 2, cursor)
}

func TestDriveTwoBotRotation(t *testing.T) {
	bots := pool(2)
	attempt := func(ctx context.Context, index int, bot model.BotAccount) model.AttemptRecord {
		if index == 0 {
			return model.AttemptRecord{Outcome: Classify(400, giftLimitBody), StatusCode: 400}
		}
		return model.AttemptRecord{Outcome: Classify(200, successBody), StatusCode: 200}
	}

	report := Drive(context.Background(), bots, 0, attempt)

	assert.Equal(t, model.ItemSent, report.Result)
	assert.Equal(t, 1, report.Cursor)
	require.Len(t, report.Attempts, 2)
	assert.Equal(t, model.OutcomeRotateBot, report.Attempts[0].Outcome)
	assert.Equal(t, bots[0].AccountID, report.Attempts[0].AccountID)
	assert.Equal(t, 1, report.Attempts[1].BotIndex)
	assert.Equal(t, bots[1].AccountID, report.Attempts[1].AccountID)
}

func TestDriveReceiverOwnsSkipsWithoutExhausting(t *testing.T) {
	bots := pool(1)
	attempt := func(ctx context.Context, index int, bot model.BotAccount) model.AttemptRecord {
		return model.AttemptRecord{Outcome: Classify(400, "errors...receiver_owns_item_from_bundle")}
	}

	report := Drive(context.Background(), bots, 0, attempt)

	assert.Equal(t, model.ItemSkipped, report.Result)
	assert.Equal(t, 0, report.Cursor)
	assert.Len(t, report.Attempts, 1)
	assert.False(t, report.Cancelled)
}

func TestDriveExhaustedPoolMakesNoAttempt(t *testing.T) {
	var indexes []int
	attempt := scripted([]model.Outcome{model.OutcomeSuccess}, &indexes)

	report := Drive(context.Background(), pool(2), 2, attempt)
	assert.Equal(t, model.ItemPoolExhausted, report.Result)
	assert.Equal(t, 2, report.Cursor)

	report = Drive(context.Background(), nil, 0, attempt)
	assert.Equal(t, model.ItemPoolExhausted, report.Result)

	assert.Empty(t, indexes)
}

func TestDriveStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bots := pool(3)
	var indexes []int
	attempt := func(ctx context.Context, index int, bot model.BotAccount) model.AttemptRecord {
		indexes = append(indexes, index)
		cancel()
		return model.AttemptRecord{Outcome: model.OutcomeFailure}
	}

	report := Drive(ctx, bots, 0, attempt)

	assert.True(t, report.Cancelled)
	assert.Equal(t, 0, report.Cursor, "the interrupted bot keeps its turn")
	assert.Equal(t, []int{0}, indexes)
}

func TestDriveCancelOnLastBotIsNotExhaustion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempt := func(ctx context.Context, index int, bot model.BotAccount) model.AttemptRecord {
		cancel()
		return model.AttemptRecord{Outcome: ClassifyError(ctx.Err())}
	}

	report := Drive(ctx, pool(1), 0, attempt)

	assert.True(t, report.Cancelled)
	assert.Equal(t, 0, report.Cursor)
	require.Len(t, report.Attempts, 1)
}

func TestDriveKeepsDeliveryThatRacesCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempt := func(ctx context.Context, index int, bot model.BotAccount) model.AttemptRecord {
		cancel()
		return model.AttemptRecord{Outcome: model.OutcomeSuccess}
	}

	report := Drive(ctx, pool(2), 1, attempt)

	assert.False(t, report.Cancelled)
	assert.Equal(t, model.ItemSent, report.Result)
	assert.Equal(t, 1, report.Cursor)
}
