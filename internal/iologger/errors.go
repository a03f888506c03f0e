package iologger

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// CreateLogFileError creates an error for a failed log file creation.
func CreateLogFileError(path string, err error) error {
	msg := `Cannot create log file

<em>File:</em> %s

<em>How to fix:</em>
  Check permissions of the log directory, or set
  log.destination to stderr.`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.CreateLogFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to create log file %s: %w", path, err),
	}
}
