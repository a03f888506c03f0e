package ioidentity

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// LookupError creates an error for a failed mapping lookup or write.
func LookupError(source string, code int, err error) error {
	msg := `Cannot query patient mappings

<em>Source:</em> %s
<em>Patient code:</em> %d`

	vars := []any{source, code}

	return &gn.Error{
		Code: errcode.IdentityLookupError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("mapping lookup %s/%d failed: %w", source, code, err),
	}
}

// ScopedImportError creates an error for a failed on-demand
// single-patient import.
func ScopedImportError(source string, code int, err error) error {
	msg := `Scoped single-patient import failed

<em>Source:</em> %s
<em>Patient code:</em> %d`

	vars := []any{source, code}

	return &gn.Error{
		Code: errcode.IdentityScopedImportError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("scoped import %s/%d failed: %w", source, code, err),
	}
}
