package attendance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendancehub/internal/attendance"
	"attendancehub/internal/memstore"
	"attendancehub/internal/profile"
	"attendancehub/internal/session"
)

type fixture struct {
	store *memstore.Store
	coord *attendance.Coordinator
	sess  session.Session
	hoc   profile.Profile
	stud  profile.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New(nil)

	hoc, err := store.Profiles().Create(ctx, profile.Profile{
		FullName: "Dr. Ade", MatricNo: "HOC/001", Department: "EEE", Role: profile.RoleHOC,
	}, "pw")
	require.NoError(t, err)
	stud, err := store.Profiles().Create(ctx, profile.Profile{
		FullName: "Bola Musa", MatricNo: "EEE/21/040", Department: "EEE",
	}, "pw")
	require.NoError(t, err)

	sess, err := store.Sessions().Create(ctx, session.Session{
		CourseCode: "EEC201", UniqueCode: "483920", Department: "EEE", HOCID: hoc.ID, IsActive: true,
	})
	require.NoError(t, err)

	return &fixture{
		store: store,
		coord: attendance.NewCoordinator(store.Sessions(), store.Ledger()),
		sess:  sess,
		hoc:   hoc,
		stud:  stud,
	}
}

func TestSubmitRecordsPresence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := time.Now().UTC()
	entry, err := f.coord.Submit(ctx, f.stud.ID, f.sess.ID, "483920")
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusPresent, entry.Status)
	assert.Equal(t, f.stud.ID, entry.StudentID)
	assert.Equal(t, f.sess.ID, entry.SessionID)
	assert.Equal(t, "EEE", entry.Department)
	assert.WithinDuration(t, before, entry.SignedAt, 5*time.Second)
}

func TestSubmitWrongPin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coord.Submit(ctx, f.stud.ID, f.sess.ID, "000000")
	assert.ErrorIs(t, err, attendance.ErrInvalidPin)

	roster, err := f.store.Ledger().ListBySession(ctx, f.sess.ID)
	require.NoError(t, err)
	assert.Empty(t, roster, "a rejected pin must not write")
}

func TestSubmitClosedPortal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Sessions().SetActive(ctx, f.sess.ID, false))

	_, err := f.coord.Submit(ctx, f.stud.ID, f.sess.ID, "483920")
	assert.ErrorIs(t, err, attendance.ErrSessionClosed)

	// Reactivation lets the same pin through again.
	require.NoError(t, f.store.Sessions().SetActive(ctx, f.sess.ID, true))
	_, err = f.coord.Submit(ctx, f.stud.ID, f.sess.ID, "483920")
	assert.NoError(t, err)
}

func TestSubmitDeletedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Sessions().Delete(ctx, f.sess.ID))

	_, err := f.coord.Submit(ctx, f.stud.ID, f.sess.ID, "483920")
	assert.ErrorIs(t, err, attendance.ErrSessionGone)
}

func TestSubmitDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coord.Submit(ctx, f.stud.ID, f.sess.ID, "483920")
	require.NoError(t, err)

	_, err = f.coord.Submit(ctx, f.stud.ID, f.sess.ID, "483920")
	assert.ErrorIs(t, err, attendance.ErrAlreadySigned)

	roster, err := f.store.Ledger().ListBySession(ctx, f.sess.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}

func TestSubmitConcurrentSameStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coord.Submit(ctx, f.stud.ID, f.sess.ID, "483920")
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, attendance.ErrAlreadySigned):
			dup++
		}
	}
	assert.Equal(t, 1, ok, "exactly one submission wins")
	assert.Equal(t, n-1, dup)

	roster, err := f.store.Ledger().ListBySession(ctx, f.sess.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}

func TestSubmitConcurrentDistinctStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 10
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		p, err := f.store.Profiles().Create(ctx, profile.Profile{
			FullName: "Student", MatricNo: "EEE/21/" + string(rune('A'+i)), Department: "EEE",
		}, "pw")
		require.NoError(t, err)
		ids[i] = p.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.coord.Submit(ctx, id, f.sess.ID, "483920")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	roster, err := f.store.Ledger().ListBySession(ctx, f.sess.ID)
	require.NoError(t, err)
	assert.Len(t, roster, n, "independent students are each admitted")
}

func TestVoidOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.coord.Submit(ctx, f.stud.ID, f.sess.ID, "483920")
	require.NoError(t, err)

	err = f.coord.Void(ctx, entry.ID, f.stud.ID)
	assert.ErrorIs(t, err, session.ErrForbidden)

	require.NoError(t, f.coord.Void(ctx, entry.ID, f.hoc.ID))

	roster, err := f.store.Ledger().ListBySession(ctx, f.sess.ID)
	require.NoError(t, err)
	assert.Empty(t, roster)

	err = f.coord.Void(ctx, entry.ID, f.hoc.ID)
	assert.ErrorIs(t, err, attendance.ErrEntryNotFound)
}

func TestStalePinAfterRecreation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The HOC deletes the session and opens a new one; the old pin must not
	// admit anyone to the new window.
	require.NoError(t, f.store.Sessions().Delete(ctx, f.sess.ID))
	fresh, err := f.store.Sessions().Create(ctx, session.Session{
		CourseCode: "EEC201", UniqueCode: "771250", Department: "EEE", HOCID: f.hoc.ID, IsActive: true,
	})
	require.NoError(t, err)

	_, err = f.coord.Submit(ctx, f.stud.ID, fresh.ID, "483920")
	assert.ErrorIs(t, err, attendance.ErrInvalidPin)
}
