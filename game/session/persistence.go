package session

import (
	"errors"
	"time"

	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/service"
)

// ErrCorruptSession marks a stored session that cannot be turned back into a
// playable game: unreadable JSON, a missing state, or a position the ruleset
// could never reach.
var ErrCorruptSession = errors.New("corrupt session")

// SessionPersistence stores sessions between server runs
type SessionPersistence interface {
	Save(session *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the on-disk form of a session. ConfigName holds the
// ruleset id so the game reloads under the same rules.
type PersistedSessionData struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}
