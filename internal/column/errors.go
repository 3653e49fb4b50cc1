package column

import (
	"fmt"

	"chunkdb/internal/types"
)

func errColumnTypeMismatch(op string, want, got types.ElementType) error {
	return fmt.Errorf("column: %s: value type %s does not match column type %s", op, got, want)
}
