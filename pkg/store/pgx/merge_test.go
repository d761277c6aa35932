package pgx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/uet-rag/prospectus/pkg/common"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	sql  string
	args []any
}

type fakeConn struct {
	calls  []execCall
	failOn func(sql string, args []any) error
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.calls = append(c.calls, execCall{sql: sql, args: args})
	if c.failOn != nil {
		if err := c.failOn(sql, args); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgxv5.Rows, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgxv5.Row {
	return nil
}

func (c *fakeConn) Begin(ctx context.Context) (pgxv5.Tx, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeConn) callsInto(table string) []execCall {
	var out []execCall
	for _, call := range c.calls {
		if strings.Contains(call.sql, "INTO "+table) {
			out = append(out, call)
		}
	}
	return out
}

func argsContain(args []any, value string) bool {
	for _, a := range args {
		if s, ok := a.(string); ok && s == value {
			return true
		}
	}
	return false
}

func testFragment() *common.Fragment {
	return &common.Fragment{
		Nodes: []common.Node{
			{ID: "department::computer_science", Type: "Department", Name: "Computer Science"},
			{ID: "person::jane_smith", Type: "Person", Name: "Jane Smith"},
		},
		Edges: []common.Edge{
			{Source: "person::jane_smith", Target: "department::computer_science", Type: "works in"},
			{Source: "department::computer_science", Target: "location::main_campus", Type: "LOCATED_AT"},
		},
	}
}

func TestMergeFragment_AllItemsMerged(t *testing.T) {
	conn := &fakeConn{}
	store := NewGraphDBStorageWithConnection(conn)

	skipped, err := store.MergeFragment(context.Background(), testFragment(), "chunk-1")
	if err != nil {
		t.Fatalf("MergeFragment() error = %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if got := len(conn.callsInto("entities")); got != 2 {
		t.Errorf("entity upserts = %d, want 2", got)
	}
	if got := len(conn.callsInto("mentions")); got != 2 {
		t.Errorf("mention links = %d, want 2", got)
	}
	if got := len(conn.callsInto("relationships")); got != 2 {
		t.Errorf("relationship upserts = %d, want 2", got)
	}
}

func TestMergeFragment_FailingEdgeDoesNotAbortBatch(t *testing.T) {
	conn := &fakeConn{
		failOn: func(sql string, args []any) error {
			if strings.Contains(sql, "INTO relationships") && argsContain(args, "location::main_campus") {
				return errors.New("violates foreign key constraint")
			}
			return nil
		},
	}
	store := NewGraphDBStorageWithConnection(conn)

	skipped, err := store.MergeFragment(context.Background(), testFragment(), "chunk-1")
	if err != nil {
		t.Fatalf("MergeFragment() error = %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	// Both edges must still be attempted, and nodes are unaffected.
	if got := len(conn.callsInto("relationships")); got != 2 {
		t.Errorf("relationship upserts = %d, want 2", got)
	}
	if got := len(conn.callsInto("entities")); got != 2 {
		t.Errorf("entity upserts = %d, want 2", got)
	}
}

func TestMergeFragment_FailingNodeDoesNotBlockRest(t *testing.T) {
	conn := &fakeConn{
		failOn: func(sql string, args []any) error {
			if strings.Contains(sql, "INTO entities") && argsContain(args, "department::computer_science") {
				return errors.New("connection reset")
			}
			return nil
		},
	}
	store := NewGraphDBStorageWithConnection(conn)

	skipped, err := store.MergeFragment(context.Background(), testFragment(), "chunk-1")
	if err != nil {
		t.Fatalf("MergeFragment() error = %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	// The failed node must not get a mention link; the surviving node must.
	mentions := conn.callsInto("mentions")
	if len(mentions) != 1 {
		t.Fatalf("mention links = %d, want 1", len(mentions))
	}
	if !argsContain(mentions[0].args, "person::jane_smith") {
		t.Errorf("mention args = %v, want person::jane_smith", mentions[0].args)
	}
	if got := len(conn.callsInto("relationships")); got != 2 {
		t.Errorf("relationship upserts = %d, want 2", got)
	}
}

func TestMergeFragment_NoMentionLinkWithoutChunkID(t *testing.T) {
	conn := &fakeConn{}
	store := NewGraphDBStorageWithConnection(conn)

	skipped, err := store.MergeFragment(context.Background(), testFragment(), "")
	if err != nil {
		t.Fatalf("MergeFragment() error = %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if got := len(conn.callsInto("mentions")); got != 0 {
		t.Errorf("mention links = %d, want 0", got)
	}
	if got := len(conn.callsInto("entities")); got != 2 {
		t.Errorf("entity upserts = %d, want 2", got)
	}
}

func TestMergeFragment_SanitizesAndDefaults(t *testing.T) {
	conn := &fakeConn{}
	store := NewGraphDBStorageWithConnection(conn)

	fragment := &common.Fragment{
		Nodes: []common.Node{{ID: "facility::library", Type: "Camp-us Facility!"}},
		Edges: []common.Edge{{Source: "a", Target: "b", Type: "is part of"}},
	}
	if _, err := store.MergeFragment(context.Background(), fragment, "chunk-1"); err != nil {
		t.Fatalf("MergeFragment() error = %v", err)
	}

	entities := conn.callsInto("entities")
	if len(entities) != 1 {
		t.Fatalf("entity upserts = %d, want 1", len(entities))
	}
	if !argsContain(entities[0].args, "CampusFacility") {
		t.Errorf("entity args = %v, want sanitized label CampusFacility", entities[0].args)
	}
	if !argsContain(entities[0].args, common.DefaultEntityName) {
		t.Errorf("entity args = %v, want default name %q", entities[0].args, common.DefaultEntityName)
	}

	rels := conn.callsInto("relationships")
	if len(rels) != 1 {
		t.Fatalf("relationship upserts = %d, want 1", len(rels))
	}
	if !argsContain(rels[0].args, "IS_PART_OF") {
		t.Errorf("relationship args = %v, want IS_PART_OF", rels[0].args)
	}
}

func TestMergeFragment_NilFragment(t *testing.T) {
	conn := &fakeConn{}
	store := NewGraphDBStorageWithConnection(conn)

	skipped, err := store.MergeFragment(context.Background(), nil, "chunk-1")
	if err != nil {
		t.Fatalf("MergeFragment() error = %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(conn.calls) != 0 {
		t.Fatalf("exec calls = %d, want 0", len(conn.calls))
	}
}
