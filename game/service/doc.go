// Package service provides the business logic layer for the Blood Flow game server.
//
// The service package implements:
//   - Multi-session game management
//   - Move and wall placement commands routed to each session's engine
//   - Scripted action sequences for agents
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages ruleset loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. The engine is not safe for concurrent use, so every command
// runs under a single service-wide mutex: two players acting on the same
// session from different connections are applied one at a time.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Select A's token, then move it one row down
//	gameService.Move(ctx, info.ID, engine.PlayerA, engine.Cell{Row: 0, Col: 3})
//	result, err := gameService.Move(ctx, info.ID, engine.PlayerA, engine.Cell{Row: 1, Col: 3})
//
// Sessions are saved through the session manager after every command. A
// failed save is logged and never fails the command itself.
package service
