package liveview_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendancehub/internal/attendance"
	"attendancehub/internal/liveview"
	"attendancehub/internal/memstore"
	"attendancehub/internal/notify"
	"attendancehub/internal/profile"
	"attendancehub/internal/session"
)

func waitUpdate(t *testing.T, p *liveview.Projector) {
	t.Helper()
	select {
	case <-p.Updates():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for projector update")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never held")
}

func TestSessionListRefreshOnNotify(t *testing.T) {
	ctx := context.Background()
	feed := notify.NewInMemory()
	store := memstore.New(feed)

	p, err := liveview.New(ctx, feed, store.Sessions(), store.Ledger(), "EEE")
	require.NoError(t, err)
	defer p.Close()
	assert.Empty(t, p.Sessions())

	_, err = store.Sessions().Create(ctx, session.Session{
		CourseCode: "EEC201", UniqueCode: "123456", Department: "EEE", HOCID: "hoc-1", IsActive: true,
	})
	require.NoError(t, err)

	waitUpdate(t, p)
	waitFor(t, func() bool { return len(p.Sessions()) == 1 })

	// Sessions in another department never reach this projector.
	_, err = store.Sessions().Create(ctx, session.Session{
		CourseCode: "MEC101", UniqueCode: "654321", Department: "MECH", HOCID: "hoc-2", IsActive: true,
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, p.Sessions(), 1)
}

func TestRosterFollowsSelectedSession(t *testing.T) {
	ctx := context.Background()
	feed := notify.NewInMemory()
	store := memstore.New(feed)

	stud, err := store.Profiles().Create(ctx, profile.Profile{
		FullName: "Bola Musa", MatricNo: "EEE/21/040", Department: "EEE",
	}, "pw")
	require.NoError(t, err)

	sessA, err := store.Sessions().Create(ctx, session.Session{
		CourseCode: "EEC201", UniqueCode: "111111", Department: "EEE", HOCID: "hoc-1", IsActive: true,
	})
	require.NoError(t, err)
	sessB, err := store.Sessions().Create(ctx, session.Session{
		CourseCode: "EEC305", UniqueCode: "222222", Department: "EEE", HOCID: "hoc-1", IsActive: true,
	})
	require.NoError(t, err)

	p, err := liveview.New(ctx, feed, store.Sessions(), store.Ledger(), "EEE")
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Select(sessA.ID))

	_, err = store.Ledger().Insert(ctx, attendance.Entry{
		StudentID: stud.ID, SessionID: sessA.ID, Department: "EEE",
	})
	require.NoError(t, err)

	waitUpdate(t, p)
	waitFor(t, func() bool { return len(p.Roster()) == 1 })
	assert.Equal(t, "Bola Musa", p.Roster()[0].FullName)

	// Re-scoping tears down the old subscription: writes to A no longer
	// touch the roster once B is selected.
	require.NoError(t, p.Select(sessB.ID))
	assert.Empty(t, p.Roster())

	other, err := store.Profiles().Create(ctx, profile.Profile{
		FullName: "Ada Obi", MatricNo: "EEE/21/041", Department: "EEE",
	}, "pw")
	require.NoError(t, err)
	_, err = store.Ledger().Insert(ctx, attendance.Entry{
		StudentID: other.ID, SessionID: sessA.ID, Department: "EEE",
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, p.Roster(), "stale-session feed must be torn down")

	require.NoError(t, p.Select(""))
	assert.Empty(t, p.Roster())
	assert.Equal(t, "", p.Selected())
}

func TestVoidShrinksRoster(t *testing.T) {
	ctx := context.Background()
	feed := notify.NewInMemory()
	store := memstore.New(feed)

	stud, err := store.Profiles().Create(ctx, profile.Profile{
		FullName: "Bola Musa", MatricNo: "EEE/21/040", Department: "EEE",
	}, "pw")
	require.NoError(t, err)
	sess, err := store.Sessions().Create(ctx, session.Session{
		CourseCode: "EEC201", UniqueCode: "111111", Department: "EEE", HOCID: "hoc-1", IsActive: true,
	})
	require.NoError(t, err)
	entry, err := store.Ledger().Insert(ctx, attendance.Entry{
		StudentID: stud.ID, SessionID: sess.ID, Department: "EEE",
	})
	require.NoError(t, err)

	p, err := liveview.New(ctx, feed, store.Sessions(), store.Ledger(), "EEE")
	require.NoError(t, err)
	defer p.Close()
	require.NoError(t, p.Select(sess.ID))
	require.Len(t, p.Roster(), 1)

	require.NoError(t, store.Ledger().Void(ctx, entry.ID))

	waitUpdate(t, p)
	waitFor(t, func() bool { return len(p.Roster()) == 0 })
}
