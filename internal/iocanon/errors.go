package iocanon

import (
	"fmt"

	"github.com/chairside/r4sync/pkg/errcode"
	"github.com/gnames/gn"
)

// AdapterError creates an error for a charting domain without an
// adapter.
func AdapterError(domain string, err error) error {
	msg := `No adapter for charting domain

<em>Domain:</em> %s`

	vars := []any{domain}

	return &gn.Error{
		Code: errcode.ChartingAdapterError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("charting adapter %s: %w", domain, err),
	}
}

// UpsertError creates an error for a failed canonical-record write.
func UpsertError(op string, err error) error {
	msg := `Cannot write a canonical charting record

<em>Operation:</em> %s`

	vars := []any{op}

	return &gn.Error{
		Code: errcode.ChartingUpsertError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("canonical %s failed: %w", op, err),
	}
}
