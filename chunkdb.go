// Package chunkdb is a thin public facade over the engine's internal
// packages (C1-C8): it wires the TiDB SQL parser, the translator, and the
// operator layer together behind an Engine type, mirroring the way the
// teacher's root package kept its own CLI entrypoints thin and delegated to
// internal/core, internal/diff, and internal/apply.
package chunkdb

import (
	"context"
	"fmt"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
	"go.uber.org/zap"

	"chunkdb/internal/config"
	"chunkdb/internal/operator"
	"chunkdb/internal/storage"
	"chunkdb/internal/table"
	"chunkdb/internal/translate"
	"chunkdb/internal/types"
)

// Engine is the single entrypoint embedding applications use: a table
// registry plus the parser instance statements are compiled with.
type Engine struct {
	storage *storage.Manager
	parser  *parser.Parser
	log     *zap.SugaredLogger
}

// New returns an Engine with no tables registered and a no-op logger.
func New() *Engine {
	return NewWithLogger(zap.NewNop().Sugar())
}

// NewWithLogger returns an Engine whose storage manager and query
// executions log through log (spec.md §2's ambient-logging requirement:
// "library code never calls a global logger; callers inject one").
func NewWithLogger(log *zap.SugaredLogger) *Engine {
	return &Engine{
		storage: storage.NewManagerWithLogger(log),
		parser:  parser.New(),
		log:     log,
	}
}

// LoadSchema registers every table a TOML schema file declares (spec.md's
// C1-C4 bulk-load path, SPEC_FULL.md's config supplement).
func (e *Engine) LoadSchema(path string) error {
	return config.LoadFile(path, e.storage)
}

// CreateTable registers a single table directly, the programmatic
// counterpart to LoadSchema for callers that don't have a TOML file.
func (e *Engine) CreateTable(name string, columnNames []string, columnTypes []types.ElementType, chunkSize int) error {
	t, err := table.New(columnNames, columnTypes, chunkSize, table.Data)
	if err != nil {
		return fmt.Errorf("chunkdb: create table %s: %w", name, err)
	}
	return e.storage.AddTable(name, t)
}

// Result is the materialized output of a single statement: Columns, Types
// and Rows are all empty for a DML statement that produced no result table
// (Insert/Update/Delete), matching spec.md §4.7's Insert/Update/Delete
// operators returning a nil table.
type Result struct {
	Columns []string
	Types   []types.ElementType
	Rows    [][]types.Value
}

// Query parses, translates, and executes a single SQL statement end to end:
// TiDB parser -> internal/translate -> internal/operator.Build -> Execute
// (spec.md §4.6/§4.7's full pipeline). Only the first statement of sql is
// executed; a caller that needs a batch of statements should split them
// before calling Query.
func (e *Engine) Query(ctx context.Context, sql string) (*Result, error) {
	stmts, _, err := e.parser.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("chunkdb: parse: %w", err)
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("chunkdb: no statement to execute")
	}
	return e.Execute(ctx, stmts[0])
}

// Execute runs an already-parsed statement. Exposed separately from Query
// so callers that parse a batch with e.Parser() can execute each statement
// without re-parsing.
func (e *Engine) Execute(ctx context.Context, stmt ast.StmtNode) (*Result, error) {
	plan, root, err := translate.Translate(stmt, e.storage)
	if err != nil {
		return nil, fmt.Errorf("chunkdb: translate: %w", err)
	}
	op, err := operator.Build(plan, root, e.storage)
	if err != nil {
		return nil, fmt.Errorf("chunkdb: build: %w", err)
	}
	out, err := op.Execute(&operator.Context{Ctx: ctx, Log: e.log})
	if err != nil {
		return nil, fmt.Errorf("chunkdb: execute: %w", err)
	}
	if out == nil {
		return &Result{}, nil
	}
	return tableToResult(out), nil
}

// Parser exposes the underlying TiDB parser for callers that need to split
// a multi-statement script themselves before calling Execute per statement.
func (e *Engine) Parser() *parser.Parser { return e.parser }

func tableToResult(t *table.Table) *Result {
	names := t.ColumnNames()
	width := t.ColumnCount()
	elemTypes := make([]types.ElementType, width)
	for i := range elemTypes {
		elemTypes[i] = t.ColumnType(i)
	}
	rows := make([][]types.Value, 0, t.RowCount())
	for c := 0; c < t.ChunkCount(); c++ {
		chunk := t.Chunk(c)
		for r := 0; r < chunk.RowCount(); r++ {
			row := types.RowID{ChunkIndex: uint32(c), Offset: uint32(r)}
			values := make([]types.Value, width)
			for col := 0; col < width; col++ {
				values[col] = t.ValueAt(col, row)
			}
			rows = append(rows, values)
		}
	}
	return &Result{Columns: names, Types: elemTypes, Rows: rows}
}
