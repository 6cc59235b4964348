package supplier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypnotizedent/printshop-os-sub018/internal/domain/integration"
)

// recordingSleep captures requested delays without waiting
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func (r *recordingSleep) total() time.Duration {
	var sum time.Duration
	for _, d := range r.delays {
		sum += d
	}
	return sum
}

func noJitter() float64 { return 0.5 }

func TestRetryPolicy_BaseDelay(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, time.Second, p.BaseDelay(1))
	assert.Equal(t, 2*time.Second, p.BaseDelay(2))
	assert.Equal(t, 4*time.Second, p.BaseDelay(3))
	assert.Equal(t, 8*time.Second, p.BaseDelay(4))
	assert.Equal(t, 10*time.Second, p.BaseDelay(5))
	assert.Equal(t, 10*time.Second, p.BaseDelay(12))
}

func TestRetryPolicy_DelayJitterBounds(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 700*time.Millisecond, p.Delay(1, 0))
	assert.Equal(t, time.Second, p.Delay(1, 0.5))
	assert.InDelta(t, float64(1300*time.Millisecond), float64(p.Delay(1, 0.9999999)), float64(time.Millisecond))

	// Jitter never pushes a delay past the cap
	assert.Equal(t, 10*time.Second, p.Delay(6, 0.9999999))
}

func TestRetryPolicy_WithDefaults(t *testing.T) {
	p := RetryPolicy{}.withDefaults()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, 2.0, p.Multiplier)
	// Zero jitter is a valid setting
	assert.Equal(t, 0.0, p.Jitter)

	custom := RetryPolicy{MaxAttempts: 5, InitialDelay: 10 * time.Millisecond}.withDefaults()
	assert.Equal(t, 5, custom.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, custom.InitialDelay)
	assert.Equal(t, 10*time.Second, custom.MaxDelay)
}

func TestRetryer_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("success on first attempt", func(t *testing.T) {
		rec := &recordingSleep{}
		r := NewRetryer(DefaultRetryPolicy(), WithSleep(rec.sleep))
		calls := 0
		err := r.Do(ctx, integration.SupplierSanMar, func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, rec.delays)
	})

	t.Run("server errors then success", func(t *testing.T) {
		rec := &recordingSleep{}
		r := NewRetryer(DefaultRetryPolicy(), WithSleep(rec.sleep), WithRandom(noJitter))
		calls := 0
		err := r.Do(ctx, integration.SupplierSanMar, func(context.Context) error {
			calls++
			if calls < 3 {
				return integration.NewStatusError(integration.SupplierSanMar, http.StatusInternalServerError, "boom")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
		assert.GreaterOrEqual(t, rec.total(), 3*time.Second)
	})

	t.Run("exhausted attempts report count", func(t *testing.T) {
		rec := &recordingSleep{}
		r := NewRetryer(DefaultRetryPolicy(), WithSleep(rec.sleep), WithRandom(noJitter))
		calls := 0
		err := r.Do(ctx, integration.SupplierASColour, func(context.Context) error {
			calls++
			return integration.NewStatusError(integration.SupplierASColour, http.StatusTooManyRequests, "slow down")
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Len(t, rec.delays, 2)

		var ce *integration.ConnectorError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, integration.ErrorKindRateLimit, ce.Kind)
		assert.Equal(t, 3, ce.Attempts)
		assert.Equal(t, http.StatusTooManyRequests, ce.Status)
		assert.Contains(t, err.Error(), "after 3 attempts")
	})

	t.Run("client error is not retried", func(t *testing.T) {
		rec := &recordingSleep{}
		r := NewRetryer(DefaultRetryPolicy(), WithSleep(rec.sleep))
		calls := 0
		err := r.Do(ctx, integration.SupplierSSActivewear, func(context.Context) error {
			calls++
			return integration.NewStatusError(integration.SupplierSSActivewear, http.StatusNotFound, "missing")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, rec.delays)
		assert.True(t, integration.IsKind(err, integration.ErrorKindNotFound))
	})

	t.Run("auth error is not retried", func(t *testing.T) {
		r := NewRetryer(DefaultRetryPolicy(), WithSleep((&recordingSleep{}).sleep))
		calls := 0
		err := r.Do(ctx, integration.SupplierSanMar, func(context.Context) error {
			calls++
			return integration.NewStatusError(integration.SupplierSanMar, http.StatusUnauthorized, "bad token")
		})
		assert.True(t, integration.IsKind(err, integration.ErrorKindAuth))
		assert.Equal(t, 1, calls)
	})

	t.Run("observer sees each retry", func(t *testing.T) {
		var seen []int
		r := NewRetryer(DefaultRetryPolicy(),
			WithSleep((&recordingSleep{}).sleep),
			WithRetryObserver(func(_ integration.SupplierID, attempt int, _ time.Duration, _ error) {
				seen = append(seen, attempt)
			}),
		)
		_ = r.Do(ctx, integration.SupplierSanMar, func(context.Context) error {
			return integration.NetworkError(integration.SupplierSanMar, errors.New("connection reset"))
		})
		assert.Equal(t, []int{1, 2}, seen)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		r := NewRetryer(DefaultRetryPolicy())
		calls := 0
		err := r.Do(cctx, integration.SupplierSanMar, func(context.Context) error {
			calls++
			return integration.NewStatusError(integration.SupplierSanMar, http.StatusBadGateway, "")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPCore_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	rec := &recordingSleep{}
	core := newHTTPCore(integration.SupplierSanMar, srv.URL, time.Second, nil, CoreOptions{
		Retryer: NewRetryer(DefaultRetryPolicy(), WithSleep(rec.sleep), WithRandom(noJitter)),
	})
	body, err := core.getJSON(context.Background(), "/x", nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, int32(3), hits.Load())
	assert.GreaterOrEqual(t, rec.total(), 3*time.Second)
}

func TestHTTPCore_NotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such style"}`))
	}))
	defer srv.Close()

	rec := &recordingSleep{}
	core := newHTTPCore(integration.SupplierSanMar, srv.URL, time.Second, nil, CoreOptions{
		Retryer: NewRetryer(DefaultRetryPolicy(), WithSleep(rec.sleep)),
	})
	_, err := core.getJSON(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Empty(t, rec.delays)

	var ce *integration.ConnectorError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusNotFound, ce.Status)
	assert.Equal(t, "no such style", ce.Message)
}

func TestHTTPCore_NetworkFailureIsRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec := &recordingSleep{}
	core := newHTTPCore(integration.SupplierSanMar, url, time.Second, nil, CoreOptions{
		Retryer: NewRetryer(DefaultRetryPolicy(), WithSleep(rec.sleep)),
	})
	_, err := core.getJSON(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.True(t, integration.IsKind(err, integration.ErrorKindNetwork))
	assert.Len(t, rec.delays, 2)
}

func TestDecodeItems(t *testing.T) {
	items, err := decodeItems(integration.SupplierSanMar, []byte(`[{"a":1},{"a":2}]`))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = decodeItems(integration.SupplierSanMar, []byte(`{"data":[{"a":1}]}`), "items", "data")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = decodeItems(integration.SupplierSanMar, []byte(`{"other":[]}`), "data")
	assert.True(t, integration.IsKind(err, integration.ErrorKindInvalidResponse))

	_, err = decodeItems(integration.SupplierSanMar, []byte(`not json`))
	assert.True(t, integration.IsKind(err, integration.ErrorKindInvalidResponse))
}
