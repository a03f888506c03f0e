package ioimport

import (
	"context"

	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
)

// NewUserImporter creates the practitioner/staff importer. Users carry
// no window axes and no patient link.
func NewUserImporter(deps Deps, store Store[schema.R4User]) r4sync.Importer {
	return &importer[r4.UserRow, schema.R4User]{
		deps:   deps,
		entity: r4.EntityUser,
		store:  store,
		stream: func(ctx context.Context, _ r4.Window, yield func(r4.UserRow) error) error {
			return deps.Ext.StreamUsers(ctx, yield)
		},
		convert: func(row r4.UserRow) schema.R4User {
			return schema.R4User{
				Source:   deps.Source,
				LegacyID: row.LegacyID(),
				UserCode: row.Code,
				Surname:  row.Surname,
				Forename: row.Forename,
				Role:     row.Role,
				Inactive: row.Inactive,
			}
		},
		apply: applyUser,
	}
}

func applyUser(e, in *schema.R4User) bool {
	var changed bool
	set(&e.UserCode, in.UserCode, &changed)
	set(&e.Surname, in.Surname, &changed)
	set(&e.Forename, in.Forename, &changed)
	set(&e.Role, in.Role, &changed)
	set(&e.Inactive, in.Inactive, &changed)
	return changed
}
