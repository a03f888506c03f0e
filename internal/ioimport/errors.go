package ioimport

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// ReadError creates an error for a failed destination lookup.
func ReadError(legacyID string, err error) error {
	msg := `Cannot read a snapshot row from the destination

<em>Legacy id:</em> %s`

	vars := []any{legacyID}

	return &gn.Error{
		Code: errcode.ImportReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("snapshot lookup %s failed: %w", legacyID, err),
	}
}

// UpsertError creates an error for a failed destination write. A
// constraint violation here means two runs raced on the same natural
// key; the run aborts and can be re-run safely.
func UpsertError(op string, err error) error {
	msg := `Cannot write a snapshot row to the destination

<em>Operation:</em> %s`

	vars := []any{op}

	return &gn.Error{
		Code: errcode.ImportUpsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("snapshot %s failed: %w", op, err),
	}
}
