// Package config provides ruleset management for the Blood Flow game server.
//
// The config package handles:
//   - Loading rulesets from JSON or YAML files
//   - Ruleset validation through engine.ValidateGameConfig
//   - Default ruleset selection
//   - Ruleset discovery and listing
//
// Ruleset Format:
//
// A ruleset names the board dimensions, the size of the shared wall stock
// and the status message templates:
//
//	name: fluxo
//	description: Reference board
//	rows: 9
//	cols: 7
//	wall_stock: 10
//	messages:
//	  moved: "Jogada realizada. Vez do jogador %s."
//
// Files are looked up as <name>.json, <name>.yaml and <name>.yml in that
// order. The file name without extension is the ruleset id used when creating
// sessions.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("fluxo")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default is "classic" when present, otherwise the first valid ruleset
// in the directory, otherwise engine.DefaultConfig().
package config
