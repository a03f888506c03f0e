// Package ioschema implements SchemaManager for the destination
// support schema. This is an impure I/O package that wraps GORM
// AutoMigrate functionality.
package ioschema

import (
	"context"

	"github.com/chairside/r4sync/pkg/db"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// manager implements the r4sync.SchemaManager interface using GORM
// AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) r4sync.SchemaManager {
	return &manager{operator: op}
}

// Create creates the migration support schema using GORM AutoMigrate.
func (m *manager) Create(ctx context.Context) error {
	return m.automigrate(ctx, errCreate)
}

// Migrate updates the schema to the latest version using GORM
// AutoMigrate. GORM handles column additions automatically; the
// import tables never drop columns.
func (m *manager) Migrate(ctx context.Context) error {
	return m.automigrate(ctx, errMigrate)
}

type errKind int

const (
	errCreate errKind = iota
	errMigrate
)

func (m *manager) automigrate(_ context.Context, kind errKind) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	if err := schema.Migrate(gormDB); err != nil {
		if kind == errCreate {
			return CreateSchemaError(err)
		}
		return MigrateSchemaError(err)
	}

	return nil
}
