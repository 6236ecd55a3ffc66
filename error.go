package cursor

import (
	"github.com/dacapoday/cursor/keystring"
	"github.com/pkg/errors"
)

var (
	ErrClosed         = errors.New("closed")
	ErrCorrupt        = keystring.ErrCorrupt
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrRecordNotFound = errors.New("record not found")
	ErrIndexNotFound  = errors.New("index not found")
	ErrIndexExists    = errors.New("index exists")
	ErrStoreNotFound  = errors.New("record store not found")
	ErrStoreExists    = errors.New("record store exists")
	ErrNullRowID      = errors.New("null row id")
	ErrUnknownEngine  = errors.New("unknown engine")
	ErrMisuse         = errors.New("cursor misuse")
)

// Misuse panics with an ErrMisuse error. It reports a call sequence that
// breaks the cursor contract, such as Restore without Save.
func Misuse(format string, args ...any) {
	panic(errors.Wrapf(ErrMisuse, format, args...))
}
