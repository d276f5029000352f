// Package memory provides map-backed implementations of the store
// ports. They mirror the Redis adapters' semantics (version CAS,
// passcode expiry) and back the unit and contract tests; the runtime
// also falls back to the audit repository here when no database is
// configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/domain"
	"github.com/erhardtcoza/vinet-onboarding-sub000/internal/ports"
)

type SessionStore struct {
	mu    sync.Mutex
	rows  map[string]domain.Session
	nowFn func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		rows:  map[string]domain.Session{},
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[session.LinkID]; ok {
		return domain.ErrConflict
	}
	s.rows[session.LinkID] = session
	return nil
}

func (s *SessionStore) Get(_ context.Context, linkID string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[linkID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return row, nil
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.rows[session.LinkID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	if stored.Version != session.Version {
		return domain.Session{}, domain.ErrVersionConflict
	}
	session.Version++
	session.UpdatedAt = s.nowFn()
	s.rows[session.LinkID] = session
	return session, nil
}

func (s *SessionStore) Delete(_ context.Context, linkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, linkID)
	return nil
}

func (s *SessionStore) ListByStatus(_ context.Context, status string) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.Session, 0, len(s.rows))
	for _, row := range s.rows {
		if status == "" || row.Status == status {
			items = append(items, row)
		}
	}
	return items, nil
}

type passcodeEntry struct {
	code      string
	expiresAt time.Time
}

type PasscodeStore struct {
	mu    sync.Mutex
	rows  map[string]passcodeEntry
	NowFn func() time.Time
}

func NewPasscodeStore() *PasscodeStore {
	return &PasscodeStore{
		rows:  map[string]passcodeEntry{},
		NowFn: func() time.Time { return time.Now().UTC() },
	}
}

func passcodeKey(linkID string, purpose ports.PasscodePurpose) string {
	return string(purpose) + "/" + linkID
}

func (s *PasscodeStore) Put(_ context.Context, linkID string, purpose ports.PasscodePurpose, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[passcodeKey(linkID, purpose)] = passcodeEntry{code: code, expiresAt: s.NowFn().Add(ttl)}
	return nil
}

func (s *PasscodeStore) Get(_ context.Context, linkID string, purpose ports.PasscodePurpose) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rows[passcodeKey(linkID, purpose)]
	if !ok || s.NowFn().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.code, true, nil
}

func (s *PasscodeStore) Delete(_ context.Context, linkID string, purpose ports.PasscodePurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, passcodeKey(linkID, purpose))
	return nil
}

type RenderCache struct {
	mu    sync.Mutex
	lines map[string][]string
	pdfs  map[string][]byte
}

func NewRenderCache() *RenderCache {
	return &RenderCache{lines: map[string][]string{}, pdfs: map[string][]byte{}}
}

func (c *RenderCache) GetLines(_ context.Context, key string) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines, ok := c.lines[key]
	return lines, ok, nil
}

func (c *RenderCache) PutLines(_ context.Context, key string, lines []string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[key] = append([]string(nil), lines...)
	return nil
}

func (c *RenderCache) GetPDF(_ context.Context, linkID, agreement string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.pdfs[agreement+"/"+linkID]
	return data, ok, nil
}

func (c *RenderCache) PutPDF(_ context.Context, linkID, agreement string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pdfs[agreement+"/"+linkID] = append([]byte(nil), data...)
	return nil
}

func (c *RenderCache) DeletePDF(_ context.Context, linkID, agreement string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pdfs, agreement+"/"+linkID)
	return nil
}

type AuditRepository struct {
	mu   sync.Mutex
	rows []domain.AuditEvent
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{rows: make([]domain.AuditEvent, 0, 64)}
}

func (r *AuditRepository) Append(_ context.Context, event domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (r *AuditRepository) Events() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEvent(nil), r.rows...)
}
