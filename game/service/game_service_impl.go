package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/wricardo/bloodflow/game/engine"
)

var logger = log15.New("module", "service")

// gameServiceImpl implements the GameService interface. Every call holds mu
// for its whole run and hands out copies of engine state, never the live one.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.Mutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Empty id lets the session manager generate one
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	logger.Info("session created", "session", session.ID, "config", configID)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Clone(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Clone(),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState().Clone(),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	logger.Info("session deleted", "session", sessionID)
	return nil
}

// Move runs one step of the select-then-move protocol for player
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, player engine.Player, target engine.Cell) (*ActionResult, error) {
	return s.act(sessionID, engine.ActionMove, player, target)
}

// PlaceWall places a wall for player on target
func (s *gameServiceImpl) PlaceWall(ctx context.Context, sessionID string, player engine.Player, target engine.Cell) (*ActionResult, error) {
	return s.act(sessionID, engine.ActionWall, player, target)
}

func (s *gameServiceImpl) act(sessionID, action string, player engine.Player, target engine.Cell) (*ActionResult, error) {
	if !player.Valid() {
		return nil, fmt.Errorf("%w: unknown player %q", ErrInvalidAction, player)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	out := apply(sess.Engine, action, player, target)
	state := sess.Engine.GetState().Clone()
	result := &ActionResult{
		Success:     out.Result != engine.ResultRejected,
		Result:      out.Result,
		Reason:      out.Reason,
		Termination: state.Termination,
		Message:     out.Message,
		GameState:   state,
		Events:      eventsFor(action, out),
	}
	if out.Result == engine.ResultSelected {
		result.LegalDestinations = sess.Engine.LegalDestinations(target)
	}

	logger.Debug("action", "session", sessionID, "action", action, "player", player, "cell", target, "result", out.Result, "reason", out.Reason)

	s.persist(sessionID, action)
	return result, nil
}

// Play runs a scripted sequence of actions. It stops at the first rejection
// or when the game ends; selections do not stop it.
func (s *gameServiceImpl) Play(ctx context.Context, sessionID string, actions []Action, reset bool) (*PlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &PlayResult{
		RequestedActions: len(actions),
		Events:           make([]GameEvent, 0),
		Success:          true,
	}

	if reset {
		state := sess.Engine.Reset()
		result.Events = append(result.Events, GameEvent{
			Type:      EventReset,
			Message:   state.Message,
			Timestamp: time.Now(),
		})
	}
	result.StartStock = sess.Engine.Stock()

	if len(actions) > engine.MaxScriptedActions {
		result.Truncated = true
		result.Limit = engine.MaxScriptedActions
		actions = actions[:engine.MaxScriptedActions]
	}

	for i, a := range actions {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game is over"
			result.StopReasonCode = "game_over"
			result.StoppedOnAction = i + 1
			break
		}

		kind := strings.ToLower(a.Type)
		if kind != engine.ActionMove && kind != engine.ActionWall {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("action %d has unknown type %q", i+1, a.Type)
			result.StopReasonCode = "invalid_action"
			result.StoppedOnAction = i + 1
			break
		}
		player, perr := engine.ParsePlayer(string(a.Player))
		if perr != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("action %d: %v", i+1, perr)
			result.StopReasonCode = "invalid_action"
			result.StoppedOnAction = i + 1
			break
		}

		out := apply(sess.Engine, kind, player, a.Cell())
		result.Events = append(result.Events, eventsFor(kind, out)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:        i + 1,
			Type:       kind,
			Player:     player,
			Target:     out.Target,
			From:       out.From,
			Result:     out.Result,
			Reason:     out.Reason,
			TurnAfter:  sess.Engine.Turn(),
			StockAfter: sess.Engine.Stock(),
		})

		if out.Result == engine.ResultRejected {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("action %d rejected: %s", i+1, out.Message)
			result.StopReasonCode = string(out.Reason)
			result.StoppedOnAction = i + 1
			break
		}
		result.ActionsExecuted++
	}

	state := sess.Engine.GetState().Clone()
	result.GameState = state
	result.EndStock = state.Stock
	result.GameOver = state.IsOver()
	result.Termination = state.Termination
	result.Message = state.Message

	s.persist(sessionID, "play")
	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset().Clone()
	s.persist(sessionID, engine.ActionReset)
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Clone(), nil
}

// LegalDestinations lists where a token standing on from could move
func (s *gameServiceImpl) LegalDestinations(ctx context.Context, sessionID string, from engine.Cell) ([]engine.Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.LegalDestinations(from), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// getSession looks a session up and refreshes its access time. Callers hold s.mu.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// persist saves the session after a command; failures are logged, never returned
func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Warn("failed to persist session", "session", sessionID, "after", after, "err", err)
	}
}

func apply(e *engine.GameEngine, action string, player engine.Player, target engine.Cell) engine.Outcome {
	if action == engine.ActionWall {
		return e.AttemptPlaceWall(player, target)
	}
	return e.AttemptMove(player, target)
}

// eventsFor turns an engine outcome into the events reported to clients
func eventsFor(action string, out engine.Outcome) []GameEvent {
	now := time.Now()
	cell := out.Target
	events := make([]GameEvent, 0, 2)

	switch out.Result {
	case engine.ResultSelected:
		return append(events, GameEvent{Type: EventSelect, Message: out.Message, Timestamp: now, Player: out.Player, Cell: &cell})
	case engine.ResultRejected:
		return append(events, GameEvent{Type: EventRejected, Message: out.Message, Timestamp: now, Player: out.Player, Cell: &cell})
	}

	kind := EventMove
	if action == engine.ActionWall {
		kind = EventWall
	}
	events = append(events, GameEvent{Type: kind, Message: out.Message, Timestamp: now, Player: out.Player, Cell: &cell})

	if out.Terminal != nil {
		events = append(events, GameEvent{
			Type:      string(out.Terminal.Reason),
			Message:   out.Message,
			Timestamp: now,
			Player:    out.Terminal.Winner,
		})
	}
	return events
}
