package ioreport

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// SourceError creates an error for a failed source read during report
// generation.
func SourceError(code int, domain string, err error) error {
	msg := `Cannot stream source rows for the drop report

<em>Patient code:</em> %d
<em>Domain:</em> %s`

	vars := []any{code, domain}

	return &gn.Error{
		Code: errcode.ReportSourceError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("drop report stream %d/%s: %w", code, domain, err),
	}
}

// CountError creates an error for a failed raw count on either store.
func CountError(store string, code int, domain string, err error) error {
	msg := `Cannot count rows for the drop report

<em>Store:</em> %s
<em>Patient code:</em> %d
<em>Domain:</em> %s`

	vars := []any{store, code, domain}

	return &gn.Error{
		Code: errcode.ReportCountError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("drop report %s count %d/%s: %w", store, code, domain, err),
	}
}
