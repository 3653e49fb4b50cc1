package translate

import "chunkdb/internal/chunkerr"

// errTranslation builds a chunkerr.Translation error, the single error kind
// this package ever produces (spec.md §7: "translation and schema errors
// are produced synchronously by C6 before any operator executes").
func errTranslation(op, format string, args ...any) error {
	return chunkerr.Newf(chunkerr.Translation, op, format, args...)
}

func wrapTranslation(op string, err error) error {
	return chunkerr.New(chunkerr.Translation, op, err)
}
