package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/steward/content"
)

func TestStreamDeliversEventsInOrder(t *testing.T) {
	s := Start(context.Background(), func(ctx context.Context, yield Yield) error {
		for i := range 3 {
			if err := yield(Event{Type: NodeAdded, NodeID: content.ID(i)}); err != nil {
				return err
			}
		}
		return nil
	})

	var got []content.ID
	for ev := range s.All() {
		assert.False(t, ev.Timestamp.IsZero())
		got = append(got, ev.NodeID)
	}
	assert.Equal(t, []content.ID{0, 1, 2}, got)
	assert.NoError(t, s.Err())
	assert.False(t, s.Next())
}

func TestStreamIsLazy(t *testing.T) {
	ran := false
	s := Start(context.Background(), func(ctx context.Context, yield Yield) error {
		ran = true
		return nil
	})
	assert.False(t, ran)
	require.NoError(t, s.Close())
	assert.False(t, ran)
	assert.False(t, s.Next())
}

func TestStreamAlternatesWithDriver(t *testing.T) {
	// The turn only advances while the driver is inside Next, so a counter
	// shared without synchronization is always observed at the yield point.
	counter := 0
	s := Start(context.Background(), func(ctx context.Context, yield Yield) error {
		for range 3 {
			counter++
			if err := yield(Event{Type: ChunkAppended}); err != nil {
				return err
			}
		}
		return nil
	})
	defer s.Close()

	for want := 1; want <= 3; want++ {
		require.True(t, s.Next())
		assert.Equal(t, want, counter)
	}
	assert.False(t, s.Next())
}

func TestStreamReturnsTurnError(t *testing.T) {
	boom := errors.New("boom")
	s := Start(context.Background(), func(ctx context.Context, yield Yield) error {
		if err := yield(Event{Type: NodeAdded}); err != nil {
			return err
		}
		return boom
	})

	require.True(t, s.Next())
	assert.NoError(t, s.Err())
	require.False(t, s.Next())
	assert.ErrorIs(t, s.Err(), boom)
}

func TestStreamRecoversPanic(t *testing.T) {
	s := Start(context.Background(), func(ctx context.Context, yield Yield) error {
		panic("handler exploded")
	})

	require.False(t, s.Next())
	var pe *PanicError
	require.ErrorAs(t, s.Err(), &pe)
	assert.Equal(t, "handler exploded", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestStreamCloseStopsTurn(t *testing.T) {
	resumed := false
	var yieldErr error
	s := Start(context.Background(), func(ctx context.Context, yield Yield) error {
		if err := yield(Event{Type: NodeAdded}); err != nil {
			return err
		}
		yieldErr = yield(Event{Type: NodeAdded})
		if yieldErr != nil {
			return yieldErr
		}
		resumed = true
		return nil
	})

	require.True(t, s.Next())
	require.True(t, s.Next())
	require.NoError(t, s.Close())

	assert.False(t, resumed)
	assert.ErrorIs(t, yieldErr, context.Canceled)
	assert.ErrorIs(t, s.Err(), context.Canceled)
	assert.False(t, s.Next())
}

func TestStreamBreakClosesTurn(t *testing.T) {
	steps := 0
	s := Start(context.Background(), func(ctx context.Context, yield Yield) error {
		for {
			steps++
			if err := yield(Event{Type: ChunkAppended}); err != nil {
				return err
			}
		}
	})

	for range s.All() {
		break
	}
	assert.Equal(t, 1, steps)
	assert.ErrorIs(t, s.Err(), context.Canceled)
}

func TestStreamParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := Start(ctx, func(ctx context.Context, yield Yield) error {
		if err := yield(Event{Type: NodeAdded}); err != nil {
			return err
		}
		return yield(Event{Type: NodeAdded})
	})
	defer s.Close()

	require.True(t, s.Next())
	cancel()
	assert.False(t, s.Next())
	assert.ErrorIs(t, s.Err(), context.Canceled)
}
