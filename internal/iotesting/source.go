// Package iotesting provides shared test infrastructure: an in-memory
// SQLite stand-in for the legacy R4 database and test configuration
// helpers. Internal package for tests only.
package iotesting

import (
	"database/sql"
	"testing"
	"time"

	"github.com/chairside/r4sync/internal/ior4"
	"github.com/chairside/r4sync/pkg/config"
	"github.com/chairside/r4sync/pkg/r4sync"

	// Pure-Go SQLite driver for fixture databases.
	_ "modernc.org/sqlite"
)

const (
	// TestDatabaseName keeps integration tests away from production
	// destinations.
	TestDatabaseName = "r4sync_test"
)

// sourceDDL mirrors the R4 tables and column names the extractor
// probes for. The fixture uses one schema variant; probing behavior
// for other variants is covered by dedicated probe tests.
const sourceDDL = `
CREATE TABLE Patients (
	PatientCode INTEGER PRIMARY KEY,
	PersonKey   TEXT,
	Surname     TEXT,
	Forename    TEXT,
	Title       TEXT,
	Sex         TEXT,
	DateOfBirth TIMESTAMP,
	Telephone   TEXT,
	EMail       TEXT,
	Address1    TEXT,
	PostCode    TEXT,
	Inactive    BOOLEAN DEFAULT 0
);

CREATE TABLE Appointments (
	AppointmentID INTEGER PRIMARY KEY,
	PatientCode   INTEGER,
	UserCode      INTEGER,
	StartTime     TIMESTAMP,
	EndTime       TIMESTAMP,
	Status        TEXT,
	Reason        TEXT,
	Notes         TEXT
);

CREATE TABLE Users (
	UserCode INTEGER PRIMARY KEY,
	Surname  TEXT,
	Forename TEXT,
	Role     TEXT,
	Inactive BOOLEAN DEFAULT 0
);

CREATE TABLE Treatments (
	TreatmentID   INTEGER PRIMARY KEY,
	PatientCode   INTEGER,
	UserCode      INTEGER,
	CodeID        INTEGER,
	Description   TEXT,
	Tooth         INTEGER,
	Surface       TEXT,
	TreatmentDate TIMESTAMP,
	Fee           REAL,
	Status        TEXT
);

CREATE TABLE TreatmentPlans (
	PatientCode  INTEGER,
	PlanNumber   INTEGER,
	UserCode     INTEGER,
	CreatedDate  TIMESTAMP,
	AcceptedDate TIMESTAMP,
	Status       TEXT,
	Description  TEXT,
	PlanTotal    REAL,
	PRIMARY KEY (PatientCode, PlanNumber)
);

CREATE TABLE TreatmentPlanItems (
	PatientCode INTEGER,
	PlanNumber  INTEGER,
	ItemNumber  INTEGER,
	CodeID      INTEGER,
	Description TEXT,
	Tooth       INTEGER,
	Surface     TEXT,
	Fee         REAL,
	Completed   BOOLEAN DEFAULT 0,
	PRIMARY KEY (PatientCode, PlanNumber, ItemNumber)
);

CREATE TABLE TreatmentReviews (
	ReviewID    INTEGER PRIMARY KEY,
	PatientCode INTEGER,
	PlanNumber  INTEGER,
	UserCode    INTEGER,
	ReviewDate  TIMESTAMP,
	Outcome     TEXT,
	Notes       TEXT
);

CREATE TABLE TreatmentTransactions (
	TransID     INTEGER PRIMARY KEY,
	RefID       INTEGER,
	PatientCode INTEGER,
	UserCode    INTEGER,
	TransDate   TIMESTAMP,
	TransType   TEXT,
	Amount      REAL,
	Description TEXT
);

CREATE TABLE PerioProbes (
	TransID     INTEGER PRIMARY KEY,
	RefID       INTEGER,
	PatientCode INTEGER,
	ExamDate    TIMESTAMP,
	ToothNumber INTEGER,
	DepthMB     INTEGER,
	DepthB      INTEGER,
	DepthDB     INTEGER,
	DepthML     INTEGER,
	DepthL      INTEGER,
	DepthDL     INTEGER,
	Bleeding    INTEGER,
	Mobility    INTEGER
);

CREATE TABLE BPEScores (
	TransID     INTEGER PRIMARY KEY,
	RefID       INTEGER,
	PatientCode INTEGER,
	ExamDate    TIMESTAMP,
	Sextant     INTEGER,
	Score       INTEGER
);

CREATE TABLE BPEFurcations (
	TransID     INTEGER PRIMARY KEY,
	RefID       INTEGER,
	PatientCode INTEGER,
	ExamDate    TIMESTAMP,
	ToothNumber INTEGER,
	Sextant     INTEGER,
	Grade       INTEGER
);

CREATE TABLE PatientNotes (
	NoteID      INTEGER PRIMARY KEY,
	PatientCode INTEGER,
	NoteDate    TIMESTAMP,
	NoteText    TEXT,
	Category    TEXT
);

CREATE TABLE CompletedTreatments (
	TransID       INTEGER PRIMARY KEY,
	RefID         INTEGER,
	PatientCode   INTEGER,
	CompletedDate TIMESTAMP,
	ToothNumber   INTEGER,
	Surface       TEXT,
	CodeID        INTEGER,
	Description   TEXT,
	PlanNumber    INTEGER,
	ItemNumber    INTEGER,
	Fee           REAL
);
`

// NewSourceDB opens an in-memory SQLite database with the fixture R4
// schema. The handle is closed on test cleanup.
func NewSourceDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("cannot open fixture database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// The in-memory database lives per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sourceDDL); err != nil {
		t.Fatalf("cannot create fixture schema: %v", err)
	}
	return db
}

// NewExtractor wraps a fixture database in an Extractor configured for
// the SQLite dialect.
func NewExtractor(t *testing.T, db *sql.DB) r4sync.Extractor {
	t.Helper()
	return ior4.NewWithDB(db, "r4", 3, time.Millisecond,
		ior4.WithSQLiteDialect())
}

// GetTestConfig returns a configuration for integration tests with the
// destination forced to the test database.
func GetTestConfig() *config.Config {
	cfg := config.New()
	cfg.Database.Database = TestDatabaseName
	return cfg
}
