package checkin_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pincheck/internal/checkin"
	"pincheck/internal/models"
	"pincheck/internal/testutil"
)

func TestCheckIn_Success(t *testing.T) {
	p := testutil.NewPipeline(t, time.Hour, time.Hour)

	res := p.Service.CheckIn(context.Background(), checkin.Request{User: "alice", Location: "Paris", Origin: "1.2.3.4"})
	require.Equal(t, checkin.OutcomeOK, res.Outcome)
	require.NotNil(t, res.Pin)

	pins := p.Pins.List(1)
	require.Len(t, pins, 1)
	assert.Equal(t, "alice", pins[0].User)
	assert.Equal(t, "Paris, France", pins[0].Display)
	assert.InDelta(t, 48.8566, pins[0].Lat, 1e-9)
	assert.InDelta(t, 2.3522, pins[0].Lon, 1e-9)
	assert.NotEmpty(t, pins[0].ID)
	assert.False(t, pins[0].CreatedAt.IsZero())
}

func TestCheckIn_EmptyLocation(t *testing.T) {
	p := testutil.NewPipeline(t, time.Hour, time.Hour)

	for _, loc := range []string{"", "   ", "\t\n"} {
		res := p.Service.CheckIn(context.Background(), checkin.Request{User: "alice", Location: loc, Origin: "1.2.3.4"})
		assert.Equal(t, checkin.OutcomeNoLocation, res.Outcome)
	}

	assert.Equal(t, 0, p.Pins.Len())
	assert.Equal(t, 0, p.Provider.Calls())

	// An empty submission does not start a cooldown.
	res := p.Service.CheckIn(context.Background(), checkin.Request{User: "alice", Location: "Paris", Origin: "1.2.3.4"})
	assert.Equal(t, checkin.OutcomeOK, res.Outcome)
}

func TestCheckIn_NotFound(t *testing.T) {
	p := testutil.NewPipeline(t, time.Hour, time.Hour)

	res := p.Service.CheckIn(context.Background(), checkin.Request{User: "alice", Location: "xyzzyqq", Origin: "1.2.3.4"})
	assert.Equal(t, checkin.OutcomeNotFound, res.Outcome)
	assert.Equal(t, 0, p.Pins.Len())
	assert.Equal(t, 0, p.Cache.Len())
}

func TestCheckIn_UpstreamFailure(t *testing.T) {
	p := testutil.NewPipeline(t, time.Hour, time.Hour)
	p.Provider.Err = errors.New("dial tcp: connection refused")

	res := p.Service.CheckIn(context.Background(), checkin.Request{User: "alice", Location: "Paris", Origin: "1.2.3.4"})
	assert.Equal(t, checkin.OutcomeUpstreamFailed, res.Outcome)
	assert.True(t, res.Outcome.IsFailure())
	assert.NotEmpty(t, res.Message)
	assert.Equal(t, 0, p.Pins.Len())
}

func TestCheckIn_ThrottledSameUser(t *testing.T) {
	p := testutil.NewPipeline(t, 150*time.Millisecond, time.Millisecond)
	ctx := context.Background()

	first := p.Service.CheckIn(ctx, checkin.Request{User: "alice", Location: "Paris", Origin: "1.1.1.1"})
	require.Equal(t, checkin.OutcomeOK, first.Outcome)

	time.Sleep(5 * time.Millisecond)
	second := p.Service.CheckIn(ctx, checkin.Request{User: "alice", Location: "Paris", Origin: "2.2.2.2"})
	assert.Equal(t, checkin.OutcomeThrottled, second.Outcome)
	assert.False(t, second.Outcome.IsFailure())
	assert.Equal(t, first.Pin.ID, p.Pins.List(1)[0].ID, "throttled attempt leaves the pin untouched")

	time.Sleep(200 * time.Millisecond)
	third := p.Service.CheckIn(ctx, checkin.Request{User: "alice", Location: "Paris", Origin: "3.3.3.3"})
	assert.Equal(t, checkin.OutcomeOK, third.Outcome)
	assert.Equal(t, 1, p.Pins.Len())
	assert.Equal(t, third.Pin.ID, p.Pins.List(1)[0].ID)
}

func TestCheckIn_ThrottledSameOrigin(t *testing.T) {
	p := testutil.NewPipeline(t, time.Millisecond, time.Hour)
	ctx := context.Background()

	require.Equal(t, checkin.OutcomeOK, p.Service.CheckIn(ctx, checkin.Request{User: "alice", Location: "Paris", Origin: "1.1.1.1"}).Outcome)
	assert.Equal(t, checkin.OutcomeThrottled, p.Service.CheckIn(ctx, checkin.Request{User: "bob", Location: "Paris", Origin: "1.1.1.1"}).Outcome)
	assert.Equal(t, 1, p.Pins.Len())
}

func TestCheckIn_NormalizesInput(t *testing.T) {
	p := testutil.NewPipeline(t, time.Hour, time.Hour)

	res := p.Service.CheckIn(context.Background(), checkin.Request{User: "al ice!", Location: "   PARIS  ", Origin: "1.1.1.1"})
	require.Equal(t, checkin.OutcomeOK, res.Outcome)
	assert.Equal(t, "alice", res.Pin.User)

	res = p.Service.CheckIn(context.Background(), checkin.Request{Location: "paris", Origin: "2.2.2.2"})
	require.Equal(t, checkin.OutcomeOK, res.Outcome)
	assert.Equal(t, "viewer", res.Pin.User)
}

func TestCheckIn_RepeatQueryUsesCache(t *testing.T) {
	p := testutil.NewPipeline(t, time.Millisecond, time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res := p.Service.CheckIn(ctx, checkin.Request{User: fmt.Sprintf("user%d", i), Location: "Paris", Origin: fmt.Sprintf("10.0.0.%d", i)})
		require.Equal(t, checkin.OutcomeOK, res.Outcome)
	}
	assert.Equal(t, 1, p.Provider.Calls())
}

type panickingResolver struct{}

func (panickingResolver) Resolve(context.Context, string) (*models.GeoResult, error) {
	panic("corrupted state")
}

type allowAll struct{}

func (allowAll) TryAcquire(string, string) bool { return true }

type discardPins struct{}

func (discardPins) Upsert(models.Pin) {}

func TestCheckIn_RecoversFromPanic(t *testing.T) {
	svc := checkin.NewService(panickingResolver{}, allowAll{}, discardPins{}, nil)

	res := svc.CheckIn(context.Background(), checkin.Request{User: "alice", Location: "Paris"})
	assert.Equal(t, checkin.OutcomeInternal, res.Outcome)
	assert.True(t, res.Outcome.IsFailure())
}

type erroringResolver struct{ err error }

func (r erroringResolver) Resolve(context.Context, string) (*models.GeoResult, error) {
	return nil, r.err
}

func TestCheckIn_UnexpectedResolveError(t *testing.T) {
	svc := checkin.NewService(erroringResolver{err: errors.New("boom")}, allowAll{}, discardPins{}, nil)

	res := svc.CheckIn(context.Background(), checkin.Request{User: "alice", Location: "Paris"})
	assert.Equal(t, checkin.OutcomeInternal, res.Outcome)
}

func TestCheckIn_ConcurrentUsers(t *testing.T) {
	p := testutil.NewPipeline(t, time.Hour, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every user checks in twice from distinct origins; only one may land.
			for j := 0; j < 2; j++ {
				p.Service.CheckIn(context.Background(), checkin.Request{
					User:     fmt.Sprintf("user%d", i%20),
					Location: "Paris",
					Origin:   fmt.Sprintf("10.%d.%d.1", i, j),
				})
			}
		}(i)
	}
	wg.Wait()

	pins := p.Pins.List(200)
	assert.Len(t, pins, 20)
	seen := make(map[string]bool)
	for i, pin := range pins {
		assert.False(t, seen[pin.User], "duplicate pin for %s", pin.User)
		seen[pin.User] = true
		if i > 0 {
			assert.False(t, pin.CreatedAt.After(pins[i-1].CreatedAt))
		}
	}
}
