package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteArtifactError

	// Logging errors
	CreateLogFileError

	// Destination database errors
	DBConnectionError
	DBNotConnectedError
	DBTableCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError

	// Legacy source errors
	SourceConnectionError
	SourceQueryError
	SourceScanError
	SourceRetryExhaustedError
	SourceColumnProbeError

	// Import errors
	ImportReadError
	ImportUpsertError

	// Charting errors
	ChartingAdapterError
	ChartingUpsertError

	// Identity errors
	IdentityLookupError
	IdentityScopedImportError

	// Linkage errors
	LinkageUpsertError
	LinkageStatusError
	LinkageSummaryError

	// Parity errors
	ParitySourceError
	ParityDestinationError

	// Report errors
	ReportSourceError
	ReportCountError

	// Cohort errors
	CohortQueryError
)
