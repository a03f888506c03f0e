package iofs

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// CreateDirError creates an error for a failed directory creation.
func CreateDirError(dir string, err error) error {
	msg := `Cannot create directory

<em>Directory:</em> %s

<em>How to fix:</em>
  Check permissions of the parent directory.`

	vars := []any{dir}

	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to create dir %s: %w", dir, err),
	}
}

// CopyFileError creates an error for a failed default-file write.
func CopyFileError(path string, err error) error {
	msg := `Cannot write file

<em>File:</em> %s`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.CopyFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to write %s: %w", path, err),
	}
}

// WriteArtifactError creates an error for a failed JSON artifact
// write.
func WriteArtifactError(path string, err error) error {
	msg := `Cannot write JSON artifact

<em>File:</em> %s

<em>How to fix:</em>
  Check the output path exists and is writable.`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.WriteArtifactError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to write artifact %s: %w", path, err),
	}
}
