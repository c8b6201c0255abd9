package database

import (
	"context"
	"strings"
	"testing"
)

type recordingDB struct {
	query string
	vars  map[string]interface{}
}

func (r *recordingDB) Connect(ctx context.Context) error { return nil }
func (r *recordingDB) Close() error                      { return nil }
func (r *recordingDB) Ping(ctx context.Context) error    { return nil }

func (r *recordingDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	r.query, r.vars = query, vars
	return nil, nil
}

func (r *recordingDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	return nil, ErrNotFound
}

func (r *recordingDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	_, err := r.Query(ctx, query, vars)
	return err
}

func TestAtomicBatch_NamespacesVariables(t *testing.T) {
	t.Parallel()

	batch := NewAtomicBatch().
		Add("UPDATE book SET copies_available = $copies WHERE id = $id;", map[string]interface{}{"id": "1", "copies": 9}).
		Add("CREATE reservation SET book_id = $id", map[string]interface{}{"id": "1"})

	query, vars := batch.Build()

	if !strings.HasPrefix(query, "BEGIN TRANSACTION;") || !strings.HasSuffix(query, "COMMIT TRANSACTION;") {
		t.Errorf("expected transaction block, got %q", query)
	}
	if !strings.Contains(query, "$v1_id") || !strings.Contains(query, "$v2_id") {
		t.Errorf("expected namespaced variables, got %q", query)
	}
	if strings.Contains(query, ";;") {
		t.Errorf("expected single statement terminators, got %q", query)
	}
	if vars["v1_copies"] != 9 || vars["v2_id"] != "1" {
		t.Errorf("unexpected vars: %v", vars)
	}
	if batch.Len() != 2 {
		t.Errorf("expected 2 statements, got %d", batch.Len())
	}
}

func TestAtomicBatch_Execute_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	db := &recordingDB{}
	if err := NewAtomicBatch().Execute(context.Background(), db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.query != "" {
		t.Errorf("expected no query, got %q", db.query)
	}
}

func TestAtomicBatch_Execute_SendsOneQuery(t *testing.T) {
	t.Parallel()

	db := &recordingDB{}
	batch := NewAtomicBatch().Add("DEFINE TABLE book SCHEMALESS", nil)

	if err := batch.Execute(context.Background(), db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(db.query, "DEFINE TABLE book SCHEMALESS;") {
		t.Errorf("unexpected query: %q", db.query)
	}
}

func TestAtomicBatch_PrefixedVariableNames(t *testing.T) {
	t.Parallel()

	batch := NewAtomicBatch().
		Add("SELECT * FROM book WHERE id = $id OR id IN $id_list", map[string]interface{}{"id": "1", "id_list": []string{"2"}})

	query, _ := batch.Build()

	if !strings.Contains(query, "$v1_id_list") || !strings.Contains(query, "= $v1_id ") {
		t.Errorf("expected both variables namespaced intact, got %q", query)
	}
	if strings.Contains(query, "v1_v1_") {
		t.Errorf("variable rewritten twice: %q", query)
	}
}
