package listener

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/pairstream/pkg/events"
	"github.com/cuemby/pairstream/pkg/types"
)

func newTestSwapListener(t *testing.T, dedupTimeout time.Duration) (*SwapListener, *events.Subscriber) {
	t.Helper()
	hub := events.NewHub()
	sub := hub.Subscribe("test", events.Filter{})
	l := NewSwapListener(nil, hub, dedupTimeout, time.Second)
	return l, sub
}

func swapPayload(op, txSig string, price float64, volumeUSD *float64) string {
	vol := "null"
	if volumeUSD != nil {
		vol = fmt.Sprintf("%v", *volumeUSD)
	}
	return fmt.Sprintf(`{"op":%q,"tx_signature":%q,"timestamp":"2026-01-01T00:00:00+00:00","pair":"pair-a","price":%v,"volume_usd":%s}`,
		op, txSig, price, vol)
}

func receiveOrTimeout(t *testing.T, sub *events.Subscriber) (types.OutboundMessage, bool) {
	t.Helper()
	done := make(chan struct{})
	timer := time.AfterFunc(50*time.Millisecond, func() { close(done) })
	defer timer.Stop()
	msg, ok, err := sub.Receive(done)
	require.NoError(t, err)
	return msg, ok
}

func TestSwapListenerBuffersInsertUntilUpdateArrives(t *testing.T) {
	l, sub := newTestSwapListener(t, 5*time.Second)

	l.handleNotification(swapPayload("INSERT", "sig-1", 1.5, nil))
	_, ok := receiveOrTimeout(t, sub)
	require.False(t, ok, "INSERT must not publish until the enriched UPDATE arrives")

	vol := 42.0
	l.handleNotification(swapPayload("UPDATE", "sig-1", 1.5, &vol))

	msg, ok := receiveOrTimeout(t, sub)
	require.True(t, ok)
	require.Equal(t, "sig-1", msg.Swap.TxSignature)
	require.Equal(t, &vol, msg.Swap.VolumeUSD)
}

func TestSwapListenerEmitsUpdateDirectlyWhenNotBuffered(t *testing.T) {
	l, sub := newTestSwapListener(t, 5*time.Second)

	vol := 10.0
	l.handleNotification(swapPayload("UPDATE", "sig-2", 2.0, &vol))

	msg, ok := receiveOrTimeout(t, sub)
	require.True(t, ok)
	require.Equal(t, "sig-2", msg.Swap.TxSignature)
}

func TestSwapListenerUnknownOpEmitsImmediatelyAndClearsBuffer(t *testing.T) {
	l, sub := newTestSwapListener(t, 5*time.Second)

	l.handleNotification(swapPayload("INSERT", "sig-3", 1.0, nil))
	l.handleNotification(swapPayload("", "sig-3", 1.0, nil))

	_, ok := receiveOrTimeout(t, sub)
	require.True(t, ok)

	l.mu.Lock()
	_, stillBuffered := l.buffer["sig-3"]
	l.mu.Unlock()
	require.False(t, stillBuffered)
}

func TestSwapListenerSweepEmitsTimedOutEntryWithoutVolumeUSD(t *testing.T) {
	l, sub := newTestSwapListener(t, -1*time.Second) // negative: everything is already "timed out"

	l.handleNotification(swapPayload("INSERT", "sig-4", 3.0, nil))
	l.sweep()

	msg, ok := receiveOrTimeout(t, sub)
	require.True(t, ok)
	require.Equal(t, "sig-4", msg.Swap.TxSignature)
	require.Nil(t, msg.Swap.VolumeUSD)

	l.mu.Lock()
	defer l.mu.Unlock()
	require.Empty(t, l.buffer)
}

func TestSwapListenerSweepLeavesFreshEntriesBuffered(t *testing.T) {
	l, sub := newTestSwapListener(t, time.Hour)

	l.handleNotification(swapPayload("INSERT", "sig-5", 1.0, nil))
	l.sweep()

	_, ok := receiveOrTimeout(t, sub)
	require.False(t, ok)
}

func TestSwapListenerHardCapEvictsOldestEntry(t *testing.T) {
	l, sub := newTestSwapListener(t, time.Hour)

	base := time.Now().Add(-time.Hour)
	l.mu.Lock()
	for i := 0; i < hardCapEntries; i++ {
		sig := fmt.Sprintf("old-%d", i)
		l.buffer[sig] = bufferedSwap{
			txSignature: sig,
			msg:         types.OutboundMessage{Kind: types.OutboundKindSwap, Swap: &types.SwapOutbound{TxSignature: sig}},
			insertedAt:  base.Add(time.Duration(i) * time.Millisecond),
		}
	}
	l.mu.Unlock()

	l.handleNotification(swapPayload("INSERT", "newest", 1.0, nil))

	msg, ok := receiveOrTimeout(t, sub)
	require.True(t, ok, "exceeding the hard cap must evict and emit the oldest entry")
	require.Equal(t, "old-0", msg.Swap.TxSignature)

	l.mu.Lock()
	defer l.mu.Unlock()
	require.Len(t, l.buffer, hardCapEntries)
	_, stillThere := l.buffer["old-0"]
	require.False(t, stillThere)
	_, newestThere := l.buffer["newest"]
	require.True(t, newestThere)
}

func TestPositionListenerPublishesDirectly(t *testing.T) {
	hub := events.NewHub()
	sub := hub.Subscribe("test", events.Filter{})
	l := NewPositionListener(nil, hub)

	payload := `{"pair":"pair-a","signer":"signer-1","position":"pos-1","transaction_signature":"sig-9","slot":100}`
	l.handleNotification(payload)

	msg, ok := receiveOrTimeout(t, sub)
	require.True(t, ok)
	require.Equal(t, types.OutboundKindPosition, msg.Kind)
	require.Equal(t, "pos-1", msg.Position.PositionID)
	require.Equal(t, uint64(100), msg.Position.Slot)
}
