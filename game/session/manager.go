package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"go.uber.org/multierr"

	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/service"
)

var logger = log15.New("module", "session")

var (
	// ErrSessionNotFound is the service layer's sentinel
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const maxSessionIDLength = 64

// Manager keeps the games being played, keyed by lower-cased session id.
// With a persistence layer every new game is written out at once and games
// missing from memory are loaded on first use.
//
// Manager guards its own map only. Callers serialize commands against one
// session's engine.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*service.Session
	store    SessionPersistence
}

// NewManager creates an in-memory session manager
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*service.Session)}
}

// NewManagerWithPersistence creates a session manager backed by store
func NewManagerWithPersistence(store SessionPersistence) *Manager {
	m := NewManager()
	m.store = store
	return m
}

func key(id string) string {
	return strings.ToLower(id)
}

// Create starts a new game under config. An empty id gets a generated
// 4-character hex id; a given id must be file-name safe and unused.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if id != "" && !validSessionID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	game, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	if id == "" {
		id = m.freeIDLocked()
	} else if _, taken := m.sessions[key(id)]; taken || m.stored(id) {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrSessionAlreadyExists, id)
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Engine:         game,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = sess
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(sess); err != nil {
			logger.Warn("failed to persist new session", "session", id, "err", err)
		}
	}
	logger.Debug("session created", "session", id, "ruleset", config.Name)
	return sess, nil
}

// Get returns the session, loading it from the store when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if !m.stored(id) {
		return nil, ErrSessionNotFound
	}
	loaded, err := m.store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile; keep the first copy
	if sess, ok := m.sessions[key(id)]; ok {
		return sess, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

// GetOrCreate returns the session, starting a new game under config when
// none exists
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return sess, err
}

// List returns the sessions in memory, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	out := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Delete forgets the session and removes its stored file
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))
	m.mu.Unlock()

	if m.stored(id) {
		if err := m.store.Delete(id); err != nil {
			return fmt.Errorf("failed to delete stored session: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory drops the session from memory and leaves its file alone
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed marks the session as used now. The new time reaches the
// store with the session's next save.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[key(id)]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// Save writes the session to the store, if there is one
func (m *Manager) Save(id string) error {
	if m.store == nil {
		return nil
	}
	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.store.Save(sess)
}

// CleanupExpiredSessions drops sessions idle for longer than maxAge from
// memory. Their files stay, so they can still be resumed.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			removed++
		}
	}
	if removed > 0 {
		logger.Info("expired sessions removed", "count", removed, "max_age", maxAge)
	}
	return removed
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions brings every stored session into memory. Files that
// cannot be restored are skipped; their errors come back combined.
func (m *Manager) LoadPersistedSessions() error {
	if m.store == nil {
		return nil
	}

	ids, err := m.store.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list stored sessions: %w", err)
	}

	var errs error
	loaded := 0
	for _, id := range ids {
		m.mu.RLock()
		_, ok := m.sessions[key(id)]
		m.mu.RUnlock()
		if ok {
			continue
		}

		sess, err := m.store.Load(id)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		m.mu.Lock()
		m.sessions[key(id)] = sess
		m.mu.Unlock()
		loaded++
	}

	logger.Info("stored sessions loaded", "loaded", loaded, "failed", len(multierr.Errors(errs)))
	return errs
}

// SaveAllSessions writes every session in memory, carrying on past failures
func (m *Manager) SaveAllSessions() error {
	if m.store == nil {
		return nil
	}

	var errs error
	sessions := m.List()
	for _, sess := range sessions {
		if err := m.store.Save(sess); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", sess.ID, err))
		}
	}
	if n := len(multierr.Errors(errs)); n > 0 {
		logger.Warn("failed to save sessions", "failed", n, "total", len(sessions))
	}
	return errs
}

func (m *Manager) stored(id string) bool {
	return m.store != nil && m.store.Exists(id)
}

// freeIDLocked draws random ids until one is unused in memory and on disk
func (m *Manager) freeIDLocked() string {
	b := make([]byte, 2)
	for {
		rand.Read(b)
		id := hex.EncodeToString(b)
		if _, taken := m.sessions[id]; !taken && !m.stored(id) {
			return id
		}
	}
}

// validSessionID accepts letters, digits, '-' and '_', since ids double as
// file names
func validSessionID(id string) bool {
	if len(id) > maxSessionIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
