/*
Copyright © 2025 the repolicy authors
*/

// Package checkers contains the built-in policies repolicy enforces, plus
// the shared helpers they are composed from (pre-commit reconciliation,
// VS Code recommendations, README badges, plain-line and declarative file
// rules).
package checkers

import "github.com/repolicyhq/repolicy/internal/policy"

// All returns the built-in checkers in execution order.
func All() []policy.Checker {
	return []policy.Checker{
		Black{},
		CSpell{},
		EditorConfig{},
		TOML{},
	}
}
