// Package config bulk-loads a TOML schema document describing the initial
// set of stored tables into a storage manager at start-up — the "bulk-load
// a schema" ambient concern spec.md leaves unstated, in the shape of the
// teacher's internal/parser/toml package: a private TOML-shaped struct
// decoded by BurntSushi/toml, then a separate conversion pass that builds
// the caller-facing types.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"chunkdb/internal/storage"
	"chunkdb/internal/table"
	"chunkdb/internal/types"
)

// schemaFile is the top-level TOML document: a list of tables, each with a
// name, an ordered column list, and an optional chunk size.
type schemaFile struct {
	Tables []tomlTable `toml:"tables"`
}

type tomlTable struct {
	Name      string       `toml:"name"`
	ChunkSize int          `toml:"chunk_size"`
	Columns   []tomlColumn `toml:"columns"`
}

type tomlColumn struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// LoadFile opens path and loads its schema into mgr.
func LoadFile(path string, mgr *storage.Manager) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f, mgr)
}

// Load decodes a TOML schema document from r and registers each declared
// table with mgr as an empty Data table ready for INSERT.
func Load(r io.Reader, mgr *storage.Manager) error {
	var sf schemaFile
	if _, err := toml.NewDecoder(r).Decode(&sf); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	for i := range sf.Tables {
		if err := addTable(&sf.Tables[i], mgr); err != nil {
			return fmt.Errorf("config: table %q: %w", sf.Tables[i].Name, err)
		}
	}
	return nil
}

func addTable(tt *tomlTable, mgr *storage.Manager) error {
	if tt.Name == "" {
		return fmt.Errorf("missing table name")
	}
	names := make([]string, len(tt.Columns))
	elemTypes := make([]types.ElementType, len(tt.Columns))
	for i, c := range tt.Columns {
		if c.Name == "" {
			return fmt.Errorf("column %d: missing name", i)
		}
		et, err := types.FromSQLTypeName(c.Type)
		if err != nil {
			return fmt.Errorf("column %q: %w", c.Name, err)
		}
		names[i] = c.Name
		elemTypes[i] = et
	}
	t, err := table.New(names, elemTypes, tt.ChunkSize, table.Data)
	if err != nil {
		return err
	}
	return mgr.AddTable(tt.Name, t)
}
