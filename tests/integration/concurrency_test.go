package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postJSON is safe to call from worker goroutines: it reports only the
// status code and leaves assertions to the caller.
func (a *testApp) postJSON(path string, body interface{}) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	resp, err := http.Post(a.server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// TestConcurrentTransfers fires transfers in both directions between a ring
// of accounts. Money is only moved, never created, so the total holds.
func TestConcurrentTransfers(t *testing.T) {
	app := newTestApp(t)

	const accounts = 5
	ids := make([]int64, accounts)
	for i := range ids {
		ids[i] = app.open(t, fmt.Sprintf("Account %d", i), "100", 30)
	}

	const workers = 100
	var wg sync.WaitGroup
	var ok, rejected, failed int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			from := ids[n%accounts]
			to := ids[(n+1+n/accounts)%accounts]
			if from == to {
				to = ids[(n+2)%accounts]
			}
			status, err := app.postJSON("/api/v1/transfers", map[string]interface{}{
				"from": from, "to": to, "amount": "7.5",
			})
			switch {
			case err != nil:
				atomic.AddInt64(&failed, 1)
			case status == http.StatusOK:
				atomic.AddInt64(&ok, 1)
			case status == http.StatusPaymentRequired:
				atomic.AddInt64(&rejected, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Zero(t, failed)
	assert.Equal(t, int64(workers), ok+rejected)

	total := decimal.Zero
	for _, id := range ids {
		bal := decimal.RequireFromString(app.account(t, id).Balance)
		assert.False(t, bal.IsNegative(), "account %d went negative", id)
		total = total.Add(bal)
	}
	assert.True(t, decimal.NewFromInt(100*accounts).Equal(total), "total drifted to %s", total)
}

// TestConcurrentWithdrawals drains one account from many goroutines. Only as
// many withdrawals as the balance covers may succeed.
func TestConcurrentWithdrawals(t *testing.T) {
	app := newTestApp(t)
	id := app.open(t, "Alice", "100", 30)

	const workers = 50
	var wg sync.WaitGroup
	var ok, insufficient int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := app.postJSON(fmt.Sprintf("/api/v1/accounts/%d/withdraw", id), map[string]string{"amount": "10"})
			if err != nil {
				return
			}
			switch status {
			case http.StatusOK:
				atomic.AddInt64(&ok, 1)
			case http.StatusPaymentRequired:
				atomic.AddInt64(&insufficient, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), ok)
	assert.Equal(t, int64(workers-10), insufficient)
	assert.Equal(t, "0", app.account(t, id).Balance)
}

// TestConcurrentMinorDeposits checks the Redis limiter admits exactly the
// minor daily limit when requests race.
func TestConcurrentMinorDeposits(t *testing.T) {
	app := newTestApp(t)
	kid := app.open(t, "Kid", "0", 12)

	const workers = 40
	var wg sync.WaitGroup
	var ok, limited int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := app.postJSON(fmt.Sprintf("/api/v1/accounts/%d/deposit", kid), map[string]string{"amount": "1"})
			if err != nil {
				return
			}
			switch status {
			case http.StatusOK:
				atomic.AddInt64(&ok, 1)
			case http.StatusTooManyRequests:
				atomic.AddInt64(&limited, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), ok)
	assert.Equal(t, int64(workers-20), limited)
	assert.Equal(t, "20", app.account(t, kid).Balance)
}

// TestConcurrentEnqueueAndProcess keeps FIFO bookkeeping consistent when
// producers and the processor run at the same time.
func TestConcurrentEnqueueAndProcess(t *testing.T) {
	app := newTestApp(t)
	id := app.open(t, "Alice", "0", 30)

	const producers = 30
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = app.postJSON("/api/v1/queue", map[string]interface{}{
				"kind": "DEPOSIT", "source": id, "amount": "2",
			})
		}()
	}
	for i := 0; i < producers/3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = app.postJSON("/api/v1/queue/process-all", nil)
		}()
	}
	wg.Wait()

	status, err := app.postJSON("/api/v1/queue/process-all", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	ctx := context.Background()
	assert.Empty(t, app.ledger.PendingTransactions(ctx))
	done, _ := app.ledger.HistoryDepth(ctx)
	assert.Equal(t, producers, done)
	assert.Equal(t, "60", app.account(t, id).Balance)
}
