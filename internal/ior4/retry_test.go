package ior4

import (
	"context"
	"errors"
	"testing"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
)

func TestRetryTransient(t *testing.T) {
	p := newRetryPolicy(3, time.Millisecond)

	tests := []struct {
		msg string
		err error
		res bool
	}{
		{
			msg: "data movement by error number",
			err: mssql.Error{Number: 601, Message: "could not continue scan"},
			res: true,
		},
		{
			msg: "data movement by message fallback",
			err: errors.New("Could not continue scan with NOLOCK due to data movement."),
			res: true,
		},
		{
			msg: "other sql server error",
			err: mssql.Error{Number: 208, Message: "invalid object name"},
			res: false,
		},
		{
			msg: "unrelated error",
			err: errors.New("connection refused"),
			res: false,
		},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, p.transient(v.err), v.msg)
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	p := newRetryPolicy(3, time.Millisecond)

	calls := 0
	err := p.run(context.Background(), "patients", func() error {
		calls++
		if calls < 3 {
			return mssql.Error{Number: 601}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhausted(t *testing.T) {
	p := newRetryPolicy(2, time.Millisecond)

	calls := 0
	err := p.run(context.Background(), "patients", func() error {
		calls++
		return mssql.Error{Number: 601}
	})

	assert.Error(t, err)
	assert.Equal(t, 2, calls, "stops at the attempt bound")
}

func TestRetryDoesNotRetryFatalErrors(t *testing.T) {
	p := newRetryPolicy(5, time.Millisecond)

	fatal := errors.New("syntax error")
	calls := 0
	err := p.run(context.Background(), "patients", func() error {
		calls++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryHonorsContext(t *testing.T) {
	p := newRetryPolicy(10, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.run(ctx, "patients", func() error {
		return mssql.Error{Number: 601}
	})
	assert.ErrorIs(t, err, context.Canceled)
}
