package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan Notification) Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return Notification{}
	}
}

func TestInMemoryScoping(t *testing.T) {
	f := NewInMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eee, err := f.Subscribe(ctx, TableSessions, "EEE")
	require.NoError(t, err)
	mech, err := f.Subscribe(ctx, TableSessions, "MECH")
	require.NoError(t, err)

	require.NoError(t, f.Publish(ctx, Notification{Table: TableSessions, Op: OpInsert, Key: "EEE"}))

	n := recv(t, eee)
	assert.Equal(t, OpInsert, n.Op)
	assert.Equal(t, "EEE", n.Key)

	select {
	case n := <-mech:
		t.Fatalf("MECH subscriber got notification for EEE: %+v", n)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInMemoryTeardownOnCancel(t *testing.T) {
	f := NewInMemory()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := f.Subscribe(ctx, TableAttendance, "sess-1")
	require.NoError(t, err)

	cancel()

	// Channel closes once the subscription is removed.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel never closed after cancel")
		}
	}
}

func TestInMemoryFullBufferDoesNotBlock(t *testing.T) {
	f := NewInMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.Subscribe(ctx, TableAttendance, "sess-1")
	require.NoError(t, err)

	// A stalled subscriber must not wedge publishers.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = f.Publish(ctx, Notification{Table: TableAttendance, Op: OpInsert, Key: "sess-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
