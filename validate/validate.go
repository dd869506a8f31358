// Command validate checks the ruleset files (.json, .yaml, .yml) in a
// directory, ../configs by default. It checks:
//   - JSON or YAML structure
//   - Name, description, board dimensions and clot stock bounds
//   - Format verbs of the message templates
//   - Both tokens can move from their start cells on an empty board
//   - Ruleset names are unique across the directory
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/bloodflow/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Name   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single ruleset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	config, err := engine.DecodeGameConfig(data, ext)
	if err != nil {
		format := "JSON"
		if ext == ".yaml" || ext == ".yml" {
			format = "YAML"
		}
		result.fail("Invalid %s: %v", format, err)
		return result
	}
	result.Name = config.Name

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Board: %dx%d", config.Rows, config.Cols),
		fmt.Sprintf("✓ Clots: %d", config.WallStock),
		fmt.Sprintf("✓ Rows to cross: %d", config.Rows-1),
		fmt.Sprintf("✓ Custom messages: %d/%d", customMessages(config.Messages), messageCount),
	)
	result.Errors = append(result.Errors, startCells(config)...)
	return result
}

// startCells describes where each token starts and how many first moves it has
func startCells(config *engine.GameConfig) []string {
	state := engine.InitGameStateFromConfig(config)
	lines := make([]string, 0, 2)
	for _, p := range []engine.Player{engine.PlayerA, engine.PlayerB} {
		start := state.TokenPosition(p)
		lines = append(lines, fmt.Sprintf("✓ Player %s starts at %s (%d first moves)", p, start, len(state.LegalDestinations(start))))
	}
	return lines
}

// messageCount is the number of templates in engine.Messages
const messageCount = 16

// customMessages counts the templates a ruleset sets itself
func customMessages(m engine.Messages) int {
	n := 0
	for _, tpl := range []string{
		m.Welcome, m.Selected, m.NotOwnPiece, m.InvalidMove, m.Moved, m.WallPlaced,
		m.DuplicateWall, m.WallOnToken, m.OutOfBounds, m.StockDepleted, m.Crossing,
		m.Blockade, m.StockExhausted, m.NotYourTurn, m.GameOver, m.Reset,
	} {
		if tpl != "" {
			n++
		}
	}
	return n
}

// rulesetFiles lists the ruleset files of dir in name order
func rulesetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// validateDir validates every ruleset in dir and flags duplicate names
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := rulesetFiles(dir)
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(files))
	seen := map[string]string{}
	for _, file := range files {
		result := validateConfig(file)
		if result.Name != "" {
			if first, ok := seen[result.Name]; ok {
				result.fail("Duplicate ruleset name %q, already used by %s", result.Name, first)
			} else {
				seen[result.Name] = result.File
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// main validates the rulesets of the directory given as the first argument,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error finding ruleset files: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Printf("No ruleset files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All rulesets are valid!")
	} else {
		fmt.Println("❌ Some rulesets have errors")
		os.Exit(1)
	}
}
