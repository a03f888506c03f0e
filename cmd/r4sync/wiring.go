package main

import (
	"context"

	"github.com/chairside/r4sync/internal/iocanon"
	"github.com/chairside/r4sync/internal/iodb"
	"github.com/chairside/r4sync/internal/ioidentity"
	"github.com/chairside/r4sync/internal/ioimport"
	"github.com/chairside/r4sync/internal/iolinkage"
	"github.com/chairside/r4sync/internal/ior4"
	"github.com/chairside/r4sync/pkg/db"
	"github.com/chairside/r4sync/pkg/r4"
	"github.com/chairside/r4sync/pkg/r4sync"
	"github.com/chairside/r4sync/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// app bundles the connected collaborators a subcommand needs. Not
// every command needs the legacy source; withSource skips the SQL
// Server connection for the ones that only touch the destination.
type app struct {
	op  db.Operator
	gdb *gorm.DB
	ext r4sync.Extractor

	mappings ioidentity.MappingStore
	issues   iolinkage.IssueStore
	queue    r4sync.LinkageQueue
	resolver r4sync.Resolver
	canon    iocanon.CanonStore
	reader   iocanon.Reader
}

func newApp(ctx context.Context, withSource bool) (*app, error) {
	cfg := getConfig()

	a := &app{op: iodb.NewPgxOperator()}
	if err := a.op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}

	sqlDB := stdlib.OpenDBFromPool(a.op.Pool())
	gdb, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{},
	)
	if err != nil {
		a.op.Close()
		return nil, err
	}
	a.gdb = gdb

	a.mappings = ioidentity.NewGormMappings(gdb)
	a.issues = iolinkage.NewGormIssueStore(gdb)
	a.queue = iolinkage.NewQueue(
		cfg.Source.Tag, cfg.Import.ActorID, a.issues,
	)
	a.canon = iocanon.NewGormCanonStore(gdb)
	a.reader = iocanon.NewGormReader(gdb)

	if withSource {
		ext, err := ior4.New(ctx, &cfg.Source)
		if err != nil {
			a.op.Close()
			return nil, err
		}
		a.ext = ext
		a.resolver = ioidentity.NewResolver(
			a.mappings, a.scopedPatientImporter(), cfg.Source.Tag,
		)
	}
	return a, nil
}

func (a *app) Close() {
	if a.ext != nil {
		a.ext.Close()
	}
	a.op.Close()
}

// scopedPatientImporter gives the resolver a way to pull one missing
// patient from the source on demand. Scoped imports always write; a
// dry run never reaches this path because Resolve alone is read-only.
func (a *app) scopedPatientImporter() ioidentity.ScopedImporter {
	cfg := getConfig()
	deps := ioimport.Deps{
		Source: cfg.Source.Tag,
		Actor:  cfg.Import.ActorID,
		Ext:    a.ext,
	}
	im := ioimport.NewPatientImporter(
		deps, ioimport.NewGormStore[schema.R4Patient](a.gdb), a.mappings,
	)
	return ioidentity.ScopedImporterFunc(
		func(ctx context.Context, code int) error {
			_, err := im.Run(ctx, r4.Window{}.SinglePatient(code))
			return err
		},
	)
}

// newImporters builds every entity importer in dependency order:
// patients and users first, then the entities that reference them.
func (a *app) newImporters(
	dryRun bool, progress r4sync.ProgressFunc,
) map[r4.EntityType]r4sync.Importer {
	cfg := getConfig()
	deps := ioimport.Deps{
		Source:   cfg.Source.Tag,
		Actor:    cfg.Import.ActorID,
		Ext:      a.ext,
		Resolver: a.resolver,
		Queue:    a.queue,
		Progress: progress,
		Every:    cfg.Import.ProgressEvery,
		DryRun:   dryRun,
	}

	// The patient importer never resolves patient links, so it takes
	// no resolver; that also keeps it usable from inside the resolver's
	// scoped-import path.
	patientDeps := deps
	patientDeps.Resolver = nil

	gdb := a.gdb
	return map[r4.EntityType]r4sync.Importer{
		r4.EntityPatient: ioimport.NewPatientImporter(
			patientDeps, ioimport.NewGormStore[schema.R4Patient](gdb), a.mappings),
		r4.EntityUser: ioimport.NewUserImporter(
			deps, ioimport.NewGormStore[schema.R4User](gdb)),
		r4.EntityAppointment: ioimport.NewAppointmentImporter(
			deps, ioimport.NewGormStore[schema.R4Appointment](gdb)),
		r4.EntityTreatment: ioimport.NewTreatmentImporter(
			deps, ioimport.NewGormStore[schema.R4Treatment](gdb)),
		r4.EntityTreatmentPlan: ioimport.NewTreatmentPlanImporter(
			deps, ioimport.NewGormStore[schema.R4TreatmentPlan](gdb)),
		r4.EntityTreatmentPlanItem: ioimport.NewTreatmentPlanItemImporter(
			deps, ioimport.NewGormStore[schema.R4TreatmentPlanItem](gdb)),
		r4.EntityTreatmentReview: ioimport.NewTreatmentReviewImporter(
			deps, ioimport.NewGormStore[schema.R4TreatmentReview](gdb)),
		r4.EntityTreatmentTransaction: ioimport.NewTreatmentTransactionImporter(
			deps, ioimport.NewGormStore[schema.R4TreatmentTransaction](gdb)),
	}
}
