package types

import (
	"fmt"
	"regexp"
	"strings"
)

// parenRe strips a parenthesized width/precision suffix from a raw SQL type
// name, e.g. "VARCHAR(255)" -> "VARCHAR", "DECIMAL(10,2)" -> "DECIMAL".
var parenRe = regexp.MustCompile(`\([^)]*\)`)

// wsRe collapses whitespace runs left behind once the parens are gone.
var wsRe = regexp.MustCompile(`\s+`)

// closedTypeTable maps every raw SQL type keyword chunkdb understands onto
// one of the five element types. Anything absent from this table is a
// Schema error: the element type set is closed (spec.md §3) and there is no
// silent default.
var closedTypeTable = map[string]ElementType{
	"TINYINT":   Int32,
	"SMALLINT":  Int32,
	"MEDIUMINT": Int32,
	"INT":       Int32,
	"INTEGER":   Int32,
	"BOOL":      Int32,
	"BOOLEAN":   Int32,
	"YEAR":      Int32,

	"BIGINT": Int64,

	"FLOAT": Float,

	"DOUBLE":           Double,
	"DOUBLE PRECISION": Double,
	"DECIMAL":          Double,
	"DEC":              Double,
	"NUMERIC":          Double,
	"FIXED":            Double,
	"REAL":             Double,

	"CHAR":       String,
	"VARCHAR":    String,
	"TEXT":       String,
	"TINYTEXT":   String,
	"MEDIUMTEXT": String,
	"LONGTEXT":   String,
	"BINARY":     String,
	"VARBINARY":  String,
	"ENUM":       String,
	"DATE":       String,
	"DATETIME":   String,
	"TIMESTAMP":  String,
	"TIME":       String,
}

// FromSQLTypeName normalizes a raw SQL type name (as produced by an external
// AST, e.g. TiDB's FieldType.String()) into one of chunkdb's five closed
// element types. Mirrors the teacher's NormalizeDataType: strip a
// parenthesized suffix, collapse whitespace, upper-case, then a single table
// lookup.
func FromSQLTypeName(raw string) (ElementType, error) {
	base := parenRe.ReplaceAllString(raw, "")
	base = wsRe.ReplaceAllString(strings.TrimSpace(base), " ")
	base = strings.ToUpper(base)
	// A width modifier like "INT UNSIGNED" or "BIGINT ZEROFILL" still maps
	// on its leading keyword once the trailing qualifier is dropped.
	for _, qualifier := range []string{" UNSIGNED", " ZEROFILL", " SIGNED"} {
		base = strings.TrimSuffix(base, qualifier)
	}
	if et, ok := closedTypeTable[base]; ok {
		return et, nil
	}
	return 0, fmt.Errorf("types: unsupported SQL type %q", raw)
}
