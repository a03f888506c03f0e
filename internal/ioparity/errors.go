package ioparity

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// SourceError creates an error for a failed source-side parity read.
func SourceError(code int, domain string, err error) error {
	msg := `Cannot read parity data from the legacy source

<em>Patient code:</em> %d
<em>Domain:</em> %s`

	vars := []any{code, domain}

	return &gn.Error{
		Code: errcode.ParitySourceError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("parity source read %d/%s: %w", code, domain, err),
	}
}

// DestinationError creates an error for a failed destination-side
// parity read.
func DestinationError(code int, domain string, err error) error {
	msg := `Cannot read parity data from the destination

<em>Patient code:</em> %d
<em>Domain:</em> %s`

	vars := []any{code, domain}

	return &gn.Error{
		Code: errcode.ParityDestinationError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("parity destination read %d/%s: %w", code, domain, err),
	}
}
