package main

import (
	"context"
	"fmt"
	"time"

	"github.com/wricardo/bloodflow/game/config"
	"github.com/wricardo/bloodflow/game/service"
	"github.com/wricardo/bloodflow/game/session"
)

const (
	cleanupInterval = time.Hour
	sessionMaxAge   = 24 * time.Hour
	syncInterval    = 5 * time.Second
)

// services bundles the wired game layers
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
}

// initializeServices wires the config manager, session persistence, session
// manager and game service, and loads persisted sessions.
func initializeServices(configDir, sessionsDir string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(sessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn("some stored sessions could not be restored", "err", err)
	}

	return &services{
		game:        service.NewGameService(sessionManager, configManager),
		sessions:    sessionManager,
		persistence: persistence,
	}, nil
}

// startBackground runs the cleanup and filesystem sync routines until ctx is done
func (s *services) startBackground(ctx context.Context) {
	go s.cleanupRoutine(ctx)
	go s.syncRoutine(ctx)
}

// cleanupRoutine removes sessions not accessed within sessionMaxAge
func (s *services) cleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sessions.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", "count", removed)
			}
		}
	}
}

// syncRoutine drops sessions from memory whose files were deleted on disk
func (s *services) syncRoutine(ctx context.Context) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pruneOrphans()
		}
	}
}

// pruneOrphans removes in-memory sessions without a backing file
func (s *services) pruneOrphans() int {
	if s.persistence == nil {
		return 0
	}

	pruned := 0
	for _, sess := range s.sessions.List() {
		if s.persistence.Exists(sess.ID) {
			continue
		}
		if err := s.sessions.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Debug("pruned session from memory", "session", sess.ID)
		}
	}

	if pruned > 0 {
		logger.Info("filesystem sync pruned orphaned sessions", "count", pruned)
	}
	return pruned
}

// shutdown saves every session
func (s *services) shutdown() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		logger.Error("failed to save sessions on shutdown", "err", err)
	}
}
