package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/bloodflow/game/engine"
	"github.com/wricardo/bloodflow/game/service"
)

const (
	sessionExt = ".json"
	tempPrefix = ".tmp-"
)

// FilePersistence keeps one JSON file per session in a directory. Writes go
// through a temporary file and a rename, so a crash never leaves half a game
// behind.
type FilePersistence struct {
	dir      string
	rulesets service.ConfigManager
}

// NewFilePersistence creates dir if needed and stores sessions in it.
// Rulesets are resolved through rulesets on both save and load.
func NewFilePersistence(dir string, rulesets service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{dir: dir, rulesets: rulesets}, nil
}

// Save writes a snapshot of the session's game
func (fp *FilePersistence) Save(sess *service.Session) error {
	if sess == nil || sess.Engine == nil {
		return fmt.Errorf("session has no game")
	}

	record := PersistedSessionData{
		ID:             sess.ID,
		ConfigName:     fp.rulesetID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sess.ID, err)
	}

	tmp, err := os.CreateTemp(fp.dir, tempPrefix+sess.ID+"-*")
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", sess.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session %s: %w", sess.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session %s: %w", sess.ID, err)
	}
	if err := os.Rename(tmp.Name(), fp.path(sess.ID)); err != nil {
		return fmt.Errorf("failed to store session %s: %w", sess.ID, err)
	}
	return nil
}

// Load rebuilds a session from its file. The stored position must fit its
// ruleset; anything else is reported as ErrCorruptSession.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	data, err := os.ReadFile(fp.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var record PersistedSessionData
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptSession, id, err)
	}
	return fp.restore(id, &record)
}

func (fp *FilePersistence) restore(id string, record *PersistedSessionData) (*service.Session, error) {
	if !strings.EqualFold(record.ID, id) {
		return nil, fmt.Errorf("%w %s: file holds session %q", ErrCorruptSession, id, record.ID)
	}
	if record.GameState == nil {
		return nil, fmt.Errorf("%w %s: no game state", ErrCorruptSession, id)
	}

	ruleset, err := fp.rulesets.LoadConfig(record.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("session %s: ruleset %q: %w", id, record.ConfigName, err)
	}
	game, err := engine.NewEngine(ruleset)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	if err := game.SetState(record.GameState); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptSession, id, err)
	}

	return &service.Session{
		ID:             record.ID,
		Engine:         game,
		Config:         ruleset,
		CreatedAt:      record.CreatedAt,
		LastAccessedAt: record.LastAccessedAt,
	}, nil
}

// Delete removes the session's file
func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove session %s: %w", id, err)
	}
	return nil
}

// ListAll returns the ids of all stored sessions in name order
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, tempPrefix) || filepath.Ext(name) != sessionExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, sessionExt))
	}
	return ids, nil
}

// Exists reports whether the session has a file
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.path(id))
	return err == nil
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.dir, id+sessionExt)
}

// rulesetID maps a ruleset's display name to the id it loads under. Names
// without a file, like the built-in default, are stored as they are.
func (fp *FilePersistence) rulesetID(name string) string {
	infos, err := fp.rulesets.ListConfigs()
	if err != nil {
		return name
	}
	for _, info := range infos {
		if info.Name == name {
			return info.ConfigID
		}
	}
	return name
}
