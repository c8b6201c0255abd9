package database

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// AtomicBatch accumulates statements and runs them inside a single
// BEGIN/COMMIT block. Nothing is sent until Execute.
//
// Variables are namespaced per statement ($id -> $v1_id) so statements
// built independently cannot collide.
type AtomicBatch struct {
	statements []string
	vars       map[string]interface{}
}

// NewAtomicBatch creates a new atomic batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{
		vars: make(map[string]interface{}),
	}
}

// Add adds a statement to the batch
func (ab *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	n := len(ab.statements) + 1

	// longest names first so $id never rewrites part of $id_list
	names := slices.Collect(maps.Keys(vars))
	slices.SortFunc(names, func(a, b string) int { return len(b) - len(a) })

	for _, name := range names {
		namespaced := fmt.Sprintf("v%d_%s", n, name)
		query = strings.ReplaceAll(query, "$"+name, "$"+namespaced)
		ab.vars[namespaced] = vars[name]
	}
	ab.statements = append(ab.statements, strings.TrimSuffix(strings.TrimSpace(query), ";"))
	return ab
}

// Build returns the transaction text and merged variables
func (ab *AtomicBatch) Build() (string, map[string]interface{}) {
	if len(ab.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range ab.statements {
		sb.WriteString(stmt)
		sb.WriteString(";\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), ab.vars
}

// Execute runs all statements as a single transaction
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) error {
	query, vars := ab.Build()
	if query == "" {
		return nil
	}
	return db.Execute(ctx, query, vars)
}

// Len returns the number of statements in the batch
func (ab *AtomicBatch) Len() int {
	return len(ab.statements)
}
