// Package session keeps the games being played and stores them between
// server runs.
//
// Manager maps session ids to a service.Session: the rules engine, its
// ruleset and access times. Generated ids are 4 hex characters from
// crypto/rand; ids chosen by callers may use letters, digits, '-' and '_'
// only, because they double as file names. Lookups ignore case.
//
// FilePersistence writes one indented JSON file per session holding the
// ruleset id and a snapshot of the game: board, tokens, clot stock, turn,
// a pending selection, how the game ended and the attempt history. Loading
// resolves the ruleset again and hands the snapshot to engine.SetState, so
// a hand-edited or truncated file that describes an unreachable position
// (a token on a clot, a selection that is not the mover's token, an ended
// game without a reason) fails with ErrCorruptSession instead of resuming.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions", rulesets)
//	if err != nil {
//		return err
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		logger.Warn("some sessions were not restored", "err", err)
//	}
//	sess, err := manager.Create("", ruleset)
//
// LoadPersistedSessions and SaveAllSessions carry on past individual
// failures and return them combined with multierr.
package session
