package iolinkage

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// UpsertError creates an error for a failed linkage-issue read or
// write.
func UpsertError(op string, err error) error {
	msg := `Cannot access the linkage queue

<em>Operation:</em> %s`

	vars := []any{op}

	return &gn.Error{
		Code: errcode.LinkageUpsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("linkage %s failed: %w", op, err),
	}
}

// SummaryError creates an error for a failed linkage-issue summary
// query.
func SummaryError(err error) error {
	msg := `Cannot summarize the linkage queue`

	return &gn.Error{
		Code: errcode.LinkageSummaryError,
		Msg:  msg,
		Err:  fmt.Errorf("linkage summarize failed: %w", err),
	}
}

// StatusError creates an error for an invalid status transition.
// Only open issues can be resolved or ignored.
func StatusError(entityType, legacyID, current, wanted string) error {
	msg := `Cannot change linkage issue status

<em>Entity:</em> %s
<em>Legacy id:</em> %s
<em>Current status:</em> %s
<em>Requested:</em> %s

<em>How to fix:</em>
  Only open issues can be resolved or ignored.`

	vars := []any{entityType, legacyID, current, wanted}

	return &gn.Error{
		Code: errcode.LinkageStatusError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("linkage issue %s/%s: cannot move %q to %q",
			entityType, legacyID, current, wanted),
	}
}
