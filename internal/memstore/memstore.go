// Package memstore is an in-process implementation of the profile directory,
// session store and attendance ledger. It enforces the same constraints as
// the Postgres schema (matric uniqueness, the (student_id, session_id)
// uniqueness key, referential integrity with cascade delete) so the
// coordinator's race behavior can be exercised without a database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"attendancehub/internal/attendance"
	"attendancehub/internal/notify"
	"attendancehub/internal/profile"
	"attendancehub/internal/session"
)

// Store holds all three tables behind one lock.
type Store struct {
	mu       sync.Mutex
	feed     notify.Feed
	profiles map[string]profile.Profile
	passes   map[string]string // profile id -> password
	matrics  map[string]string // matric no -> profile id
	sessions map[string]session.Session
	entries  map[string]attendance.Entry
	pairs    map[[2]string]string // (student, session) -> entry id
}

// New creates an empty store. feed may be nil.
func New(feed notify.Feed) *Store {
	return &Store{
		feed:     feed,
		profiles: make(map[string]profile.Profile),
		passes:   make(map[string]string),
		matrics:  make(map[string]string),
		sessions: make(map[string]session.Session),
		entries:  make(map[string]attendance.Entry),
		pairs:    make(map[[2]string]string),
	}
}

// Sessions returns the session.Store view.
func (s *Store) Sessions() session.Store { return (*sessionStore)(s) }

// Ledger returns the attendance.Ledger view.
func (s *Store) Ledger() attendance.Ledger { return (*ledgerStore)(s) }

// Profiles returns the profile.Directory view.
func (s *Store) Profiles() profile.Directory { return (*profileStore)(s) }

func (s *Store) publish(table, op, key string) {
	if s.feed == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.feed.Publish(ctx, notify.Notification{Table: table, Op: op, Key: key})
}

// ---------- sessions ----------

type sessionStore Store

func (s *sessionStore) Create(_ context.Context, sess session.Session) (session.Session, error) {
	s.mu.Lock()
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	(*Store)(s).publish(notify.TableSessions, notify.OpInsert, sess.Department)
	return sess, nil
}

func (s *sessionStore) Get(_ context.Context, id string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *sessionStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return session.ErrNotFound
	}
	sess.IsActive = active
	s.sessions[id] = sess
	s.mu.Unlock()
	(*Store)(s).publish(notify.TableSessions, notify.OpUpdate, sess.Department)
	return nil
}

func (s *sessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return session.ErrNotFound
	}
	delete(s.sessions, id)
	// Cascade, as ON DELETE CASCADE would.
	for eid, e := range s.entries {
		if e.SessionID == id {
			delete(s.entries, eid)
			delete(s.pairs, [2]string{e.StudentID, e.SessionID})
		}
	}
	s.mu.Unlock()
	(*Store)(s).publish(notify.TableSessions, notify.OpDelete, sess.Department)
	return nil
}

func (s *sessionStore) ListByDepartment(_ context.Context, department string) ([]session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []session.Session
	for _, sess := range s.sessions {
		if sess.Department == department {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *sessionStore) LatestActiveByHOC(_ context.Context, hocID string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *session.Session
	for _, sess := range s.sessions {
		if sess.HOCID != hocID || !sess.IsActive {
			continue
		}
		if latest == nil || sess.CreatedAt.After(latest.CreatedAt) {
			cp := sess
			latest = &cp
		}
	}
	return latest, nil
}

// ---------- ledger ----------

type ledgerStore Store

func (s *ledgerStore) Insert(_ context.Context, e attendance.Entry) (attendance.Entry, error) {
	s.mu.Lock()
	if _, ok := s.sessions[e.SessionID]; !ok {
		s.mu.Unlock()
		return attendance.Entry{}, attendance.ErrSessionGone
	}
	pair := [2]string{e.StudentID, e.SessionID}
	if _, ok := s.pairs[pair]; ok {
		s.mu.Unlock()
		return attendance.Entry{}, attendance.ErrAlreadySigned
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = attendance.StatusPresent
	}
	if e.SignedAt.IsZero() {
		e.SignedAt = time.Now().UTC()
	}
	e.CreatedAt = time.Now().UTC()
	s.entries[e.ID] = e
	s.pairs[pair] = e.ID
	s.mu.Unlock()
	(*Store)(s).publish(notify.TableAttendance, notify.OpInsert, e.SessionID)
	return e, nil
}

func (s *ledgerStore) Get(_ context.Context, id string) (attendance.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return attendance.Entry{}, attendance.ErrEntryNotFound
	}
	return e, nil
}

func (s *ledgerStore) Find(_ context.Context, studentID, sessionID string) (*attendance.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.pairs[[2]string{studentID, sessionID}]
	if !ok {
		return nil, nil
	}
	e := s.entries[id]
	return &e, nil
}

func (s *ledgerStore) Void(_ context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return attendance.ErrEntryNotFound
	}
	delete(s.entries, id)
	delete(s.pairs, [2]string{e.StudentID, e.SessionID})
	s.mu.Unlock()
	(*Store)(s).publish(notify.TableAttendance, notify.OpDelete, e.SessionID)
	return nil
}

func (s *ledgerStore) ListBySession(_ context.Context, sessionID string) ([]attendance.RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.RosterEntry
	for _, e := range s.entries {
		if e.SessionID != sessionID {
			continue
		}
		re := attendance.RosterEntry{Entry: e}
		if p, ok := s.profiles[e.StudentID]; ok {
			re.FullName, re.MatricNo, re.Signature = p.FullName, p.MatricNo, p.Signature
		}
		out = append(out, re)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignedAt.After(out[j].SignedAt) })
	return out, nil
}

func (s *ledgerStore) ListByStudent(_ context.Context, studentID string) ([]attendance.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.HistoryEntry
	for _, e := range s.entries {
		if e.StudentID != studentID {
			continue
		}
		he := attendance.HistoryEntry{Entry: e}
		if sess, ok := s.sessions[e.SessionID]; ok {
			he.CourseCode, he.SessionCreated = sess.CourseCode, sess.CreatedAt
		}
		out = append(out, he)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignedAt.After(out[j].SignedAt) })
	return out, nil
}

// ---------- profiles ----------

type profileStore Store

func (s *profileStore) Create(_ context.Context, p profile.Profile, password string) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matrics[p.MatricNo]; ok {
		return profile.Profile{}, profile.ErrMatricTaken
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Level == "" {
		p.Level = "100"
	}
	if p.Role == "" {
		p.Role = profile.RoleStudent
	}
	p.CreatedAt = time.Now().UTC()
	s.profiles[p.ID] = p
	s.passes[p.ID] = password
	s.matrics[p.MatricNo] = p.ID
	return p, nil
}

func (s *profileStore) GetByID(_ context.Context, id string) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (s *profileStore) GetByCredentials(_ context.Context, matricNo, password string) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.matrics[matricNo]
	if !ok || s.passes[id] != password {
		return profile.Profile{}, profile.ErrBadCredentials
	}
	return s.profiles[id], nil
}

func (s *profileStore) ListStudentsByDepartment(_ context.Context, department string) ([]profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []profile.Profile
	for _, p := range s.profiles {
		if p.Department == department && p.Role == profile.RoleStudent {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatricNo < out[j].MatricNo })
	return out, nil
}

func (s *profileStore) UpdateLevel(_ context.Context, id, level string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return profile.ErrNotFound
	}
	p.Level = level
	s.profiles[id] = p
	return nil
}
