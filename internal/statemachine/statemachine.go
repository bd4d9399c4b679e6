// Package statemachine implements spec.md §4.1's apply loop / §4.6 glue: it
// is the raft.StateMachine a Node drives, routing each committed command
// through the SQL lexer/parser/planner/executor and reporting back a result
// opaque to raft itself.
package statemachine

import (
	"github.com/raftsql/raftsql/internal/catalog"
	"github.com/raftsql/raftsql/internal/kvstore"
	"github.com/raftsql/raftsql/internal/log"
	"github.com/raftsql/raftsql/internal/sql/ast"
	"github.com/raftsql/raftsql/internal/sql/exec"
	"github.com/raftsql/raftsql/internal/sql/parser"
	"github.com/raftsql/raftsql/internal/sql/plan"
	"github.com/raftsql/raftsql/internal/value"
)

var slog = log.With("statemachine")

// Result is what Apply reports for one committed command: either a result
// set (possibly empty, as for CREATE TABLE) or a client-visible query error.
// Err here is spec.md §7's ParseError/PlanError/NotImplemented family -- not
// a fatal error, just the outcome of this particular query.
type Result struct {
	Columns  []string
	Rows     [][]value.Value
	Mutating bool
	Err      error
}

// Engine is the state machine: spec.md §3's catalog and tuple store, driven
// exclusively by the applier (spec.md §5 "the catalog + KV store is accessed
// only by the applier").
type Engine struct {
	kv *kvstore.Store
}

// NewEngine wraps kv as a raft.StateMachine.
func NewEngine(kv *kvstore.Store) *Engine {
	return &Engine{kv: kv}
}

// Apply implements raft.StateMachine. command is SQL text; index is the log
// index being applied, threaded through for logging only (the executor
// itself has no notion of index).
func (e *Engine) Apply(index uint64, command []byte) (interface{}, error) {
	stmt, err := parser.Parse(string(command))
	if err != nil {
		slog.Debug().Uint64("index", index).Err(err).Msg("rejected: parse error")
		return &Result{Err: err}, nil
	}

	node, err := plan.Plan(stmt, e.kv)
	if err != nil {
		slog.Debug().Uint64("index", index).Err(err).Msg("rejected: plan error")
		return &Result{Err: err}, nil
	}

	if node.Mutating() {
		return e.applyMutating(index, node)
	}
	return e.applyReadOnly(index, node)
}

// applyMutating runs node against the live KV store, so its effects become
// visible to every apply (and read) that follows.
func (e *Engine) applyMutating(index uint64, node plan.Node) (*Result, error) {
	it, err := exec.Execute(node, e.kv)
	if err != nil {
		return &Result{Err: err}, nil
	}
	rows, err := exec.Collect(it)
	if err != nil {
		return &Result{Err: err}, nil
	}
	slog.Info().Uint64("index", index).Int("rows", len(rows)).Msg("applied mutating command")
	return &Result{Columns: columnsOf(node), Rows: rows, Mutating: true}, nil
}

// applyReadOnly runs node against a frozen snapshot of the KV store (spec.md
// §4.7's immutable ordered map taken at this exact apply index), so the scan
// can never observe a mutation from a later, concurrently-applied entry --
// though on this single-threaded applier there is none in flight anyway,
// this is also the shape a future concurrent reader would need.
func (e *Engine) applyReadOnly(index uint64, node plan.Node) (*Result, error) {
	snap := e.kv.Snapshot()
	it, err := exec.Open(node, snap)
	if err != nil {
		return &Result{Err: err}, nil
	}
	rows, err := exec.Collect(it)
	if err != nil {
		return &Result{Err: err}, nil
	}
	return &Result{Columns: columnsOf(node), Rows: rows}, nil
}

// columnsOf derives result column labels from the plan root, per spec.md
// §4.5/§4.6: a Projection carries its own labels, a bare Scan reports its
// table's column names in schema order, everything else yields no rows.
func columnsOf(node plan.Node) []string {
	switch n := node.(type) {
	case plan.Projection:
		return n.Labels
	case plan.Scan:
		names := make([]string, len(n.Table.Columns))
		for i, c := range n.Table.Columns {
			names[i] = c.Name
		}
		return names
	default:
		return nil
	}
}

// IsQuery reports whether stmt is a SELECT statement.
func IsQuery(stmt ast.Stmt) bool {
	_, ok := stmt.(ast.Select)
	return ok
}

var _ catalog.KVReader = (*kvstore.Snapshot)(nil)
