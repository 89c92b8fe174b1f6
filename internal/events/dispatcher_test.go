package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscribeRejectsDuplicateBinding(t *testing.T) {
	d := NewDispatcher()
	noop := func(context.Context, Event) error { return nil }

	require.NoError(t, d.Subscribe(ResultSaved, "notify-result", noop))
	err := d.Subscribe(ResultSaved, "notify-result", noop)
	require.ErrorIs(t, err, ErrDuplicateBinding)
	require.Equal(t, 1, d.Bindings(ResultSaved))

	require.NoError(t, d.Subscribe(HolidayCreated, "notify-result", noop))
	require.Error(t, d.Subscribe("", "x", noop))
	require.Error(t, d.Subscribe(HolidayCreated, "other", nil))
}

func TestPublishRunsBindingsInOrder(t *testing.T) {
	d := NewDispatcher()
	var calls []string

	require.NoError(t, d.Subscribe(HolidayCreated, "first", func(_ context.Context, evt Event) error {
		calls = append(calls, "first:"+evt.Payload.(HolidayChanged).Name)
		return nil
	}))
	require.NoError(t, d.Subscribe(HolidayCreated, "second", func(_ context.Context, evt Event) error {
		calls = append(calls, "second")
		return nil
	}))

	d.Publish(context.Background(), HolidayCreated, HolidayChanged{Name: "Diwali"})
	require.Equal(t, []string{"first:Diwali", "second"}, calls)
}

func TestPublishSurvivesFailingBindings(t *testing.T) {
	d := NewDispatcher()
	reached := false

	require.NoError(t, d.Subscribe(LeaveDecided, "errors", func(context.Context, Event) error {
		return errors.New("storage down")
	}))
	require.NoError(t, d.Subscribe(LeaveDecided, "panics", func(context.Context, Event) error {
		panic("boom")
	}))
	require.NoError(t, d.Subscribe(LeaveDecided, "after", func(context.Context, Event) error {
		reached = true
		return nil
	}))

	require.NotPanics(t, func() {
		d.Publish(context.Background(), LeaveDecided, LeaveDecision{})
	})
	require.True(t, reached)
}

func TestPublishWithoutBindings(t *testing.T) {
	d := NewDispatcher()
	require.NotPanics(t, func() {
		d.Publish(context.Background(), AnnouncementSent, Announcement{})
	})
}
