package iocohort

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// QueryError creates an error for a failed cohort-selection query.
func QueryError(domain string, err error) error {
	msg := `Cannot select patient cohort

<em>Domain:</em> %s`

	vars := []any{domain}

	return &gn.Error{
		Code: errcode.CohortQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cohort query %s failed: %w", domain, err),
	}
}
