package events

import (
	"context"
	"errors"
	"testing"

	"shopgifter/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunsHandlersInOrder(t *testing.T) {
	m := NewManager(nil)
	var got []string

	m.Subscribe(EventItemFinished, func(ctx context.Context, e Event) error {
		got = append(got, "first")
		return nil
	})
	m.Subscribe(EventItemFinished, func(ctx context.Context, e Event) error {
		data, ok := e.Data.(ItemFinishedData)
		require.True(t, ok)
		got = append(got, data.Result.String())
		return nil
	})
	m.Subscribe(EventRunFinished, func(ctx context.Context, e Event) error {
		got = append(got, "unexpected")
		return nil
	})

	m.Publish(context.Background(), EventItemFinished, ItemFinishedData{OfferID: "A", Result: model.ItemSent})

	assert.Equal(t, []string{"first", "sent"}, got)
}

func TestPublishReportsHandlerErrors(t *testing.T) {
	var reported []error
	m := NewManager(func(e Event, err error) {
		assert.Equal(t, EventRunStarted, e.Type)
		reported = append(reported, err)
	})
	boom := errors.New("boom")
	calls := 0
	m.Subscribe(EventRunStarted, func(ctx context.Context, e Event) error { calls++; return boom })
	m.Subscribe(EventRunStarted, func(ctx context.Context, e Event) error { calls++; return nil })

	m.Publish(context.Background(), EventRunStarted, RunStartedData{Items: 3})

	assert.Equal(t, 2, calls)
	assert.Equal(t, []error{boom}, reported)
}

func TestNilManagerDropsEvents(t *testing.T) {
	var nilManager *Manager
	assert.NotPanics(t, func() {
		nilManager.Publish(context.Background(), EventRunStarted, nil)
	})
}
