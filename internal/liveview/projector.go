// Package liveview maintains a read-optimized mirror of the sessions visible
// to one client and the roster of its selected session. It is a cache plus
// refresh trigger, never a source of truth: every notification causes a full
// re-fetch from the store.
package liveview

import (
	"context"
	"log"
	"sync"

	"attendancehub/internal/attendance"
	"attendancehub/internal/notify"
	"attendancehub/internal/session"
)

// Projector mirrors one department's session list and one selected roster.
type Projector struct {
	sessions session.Store
	ledger   attendance.Ledger
	feed     notify.Feed

	department string

	mu         sync.Mutex
	list       []session.Session
	roster     []attendance.RosterEntry
	selected   string
	cancelSub  context.CancelFunc // attendance-scope subscription
	rootCtx    context.Context
	rootCancel context.CancelFunc

	updates chan struct{}
}

// New builds a projector for one department, primes the session list and
// starts the department-scoped subscription. Close releases everything.
func New(ctx context.Context, feed notify.Feed, sessions session.Store, ledger attendance.Ledger, department string) (*Projector, error) {
	rootCtx, rootCancel := context.WithCancel(ctx)
	p := &Projector{
		sessions:   sessions,
		ledger:     ledger,
		feed:       feed,
		department: department,
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
		updates:    make(chan struct{}, 1),
	}

	if err := p.refetchSessions(); err != nil {
		rootCancel()
		return nil, err
	}

	ch, err := feed.Subscribe(rootCtx, notify.TableSessions, department)
	if err != nil {
		rootCancel()
		return nil, err
	}
	go p.pump(ch, p.refetchSessions)
	return p, nil
}

// Select switches the roster scope to sessionID, tearing down the previous
// attendance subscription first so no live feed stays pointed at a stale
// session. An empty id clears the roster.
func (p *Projector) Select(sessionID string) error {
	p.mu.Lock()
	if p.cancelSub != nil {
		p.cancelSub()
		p.cancelSub = nil
	}
	p.selected = sessionID
	p.roster = nil
	p.mu.Unlock()

	if sessionID == "" {
		p.signal()
		return nil
	}

	if err := p.refetchRoster(sessionID); err != nil {
		return err
	}

	subCtx, cancel := context.WithCancel(p.rootCtx)
	ch, err := p.feed.Subscribe(subCtx, notify.TableAttendance, sessionID)
	if err != nil {
		cancel()
		return err
	}
	p.mu.Lock()
	p.cancelSub = cancel
	p.mu.Unlock()

	go p.pump(ch, func() error { return p.refetchRoster(sessionID) })
	return nil
}

// Sessions returns the cached session list.
func (p *Projector) Sessions() []session.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]session.Session, len(p.list))
	copy(out, p.list)
	return out
}

// Roster returns the cached roster for the selected session.
func (p *Projector) Roster() []attendance.RosterEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]attendance.RosterEntry, len(p.roster))
	copy(out, p.roster)
	return out
}

// Selected returns the currently selected session id.
func (p *Projector) Selected() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// Updates signals after each refresh; consecutive refreshes coalesce.
func (p *Projector) Updates() <-chan struct{} {
	return p.updates
}

// Close tears down every subscription.
func (p *Projector) Close() {
	p.rootCancel()
}

func (p *Projector) pump(ch <-chan notify.Notification, refetch func() error) {
	for range ch {
		if err := refetch(); err != nil {
			// Keep the stale cache; the next notification retries.
			log.Printf("liveview refetch failed: %v", err)
			continue
		}
		p.signal()
	}
}

func (p *Projector) refetchSessions() error {
	list, err := p.sessions.ListByDepartment(p.rootCtx, p.department)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.list = list
	p.mu.Unlock()
	return nil
}

func (p *Projector) refetchRoster(sessionID string) error {
	roster, err := p.ledger.ListBySession(p.rootCtx, sessionID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	// A late fetch for a deselected session must not clobber the cache.
	if p.selected == sessionID {
		p.roster = roster
	}
	p.mu.Unlock()
	return nil
}

func (p *Projector) signal() {
	select {
	case p.updates <- struct{}{}:
	default:
	}
}
