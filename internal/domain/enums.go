package domain

// OperationKind names one of the five comparison operations.
type OperationKind string

const (
	KindCompareFiles   OperationKind = "compare_files"
	KindCompareFolders OperationKind = "compare_folders"
	KindSyncFolders    OperationKind = "sync_folders"
	KindGenerateReport OperationKind = "generate_report"
	KindMergeFiles     OperationKind = "merge_files"
)

func (k OperationKind) Valid() bool {
	switch k {
	case KindCompareFiles, KindCompareFolders, KindSyncFolders, KindGenerateReport, KindMergeFiles:
		return true
	}
	return false
}

// AllOperationKinds lists every operation in a stable order.
var AllOperationKinds = []OperationKind{
	KindCompareFiles,
	KindCompareFolders,
	KindSyncFolders,
	KindGenerateReport,
	KindMergeFiles,
}

// OutputFormat selects how a file comparison reports its result.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputHTML OutputFormat = "html"
)

func (f OutputFormat) Valid() bool {
	switch f {
	case OutputText, OutputHTML:
		return true
	}
	return false
}

// SyncDirection is the direction updates flow during a folder sync.
type SyncDirection string

const (
	SyncLeftToRight   SyncDirection = "left-to-right"
	SyncRightToLeft   SyncDirection = "right-to-left"
	SyncBidirectional SyncDirection = "bidirectional"
)

func (d SyncDirection) Valid() bool {
	switch d {
	case SyncLeftToRight, SyncRightToLeft, SyncBidirectional:
		return true
	}
	return false
}

// ReportType is the file format of a generated comparison report.
type ReportType string

const (
	ReportHTML ReportType = "html"
	ReportXML  ReportType = "xml"
	ReportCSV  ReportType = "csv"
	ReportText ReportType = "text"
)

func (r ReportType) Valid() bool {
	switch r {
	case ReportHTML, ReportXML, ReportCSV, ReportText:
		return true
	}
	return false
}

// Extension returns the file extension used for derived report paths.
func (r ReportType) Extension() string {
	if r == ReportText {
		return ".txt"
	}
	return "." + string(r)
}

// OutcomeKind is the terminal classification of a completed tool run.
type OutcomeKind string

const (
	OutcomeIdentical           OutcomeKind = "identical"
	OutcomeBinaryIdentical     OutcomeKind = "binary_identical"
	OutcomeRulesBasedIdentical OutcomeKind = "rules_based_identical"
	OutcomeSimilar             OutcomeKind = "similar"
	OutcomeDifferent           OutcomeKind = "different"
	OutcomeConflict            OutcomeKind = "conflict"
	OutcomeError               OutcomeKind = "error"
)

func (o OutcomeKind) Valid() bool {
	switch o {
	case OutcomeIdentical, OutcomeBinaryIdentical, OutcomeRulesBasedIdentical,
		OutcomeSimilar, OutcomeDifferent, OutcomeConflict, OutcomeError:
		return true
	}
	return false
}

// ErrorKind classifies why an operation produced no usable outcome.
type ErrorKind string

const (
	ErrKindPathNotFound      ErrorKind = "path_not_found"
	ErrKindToolNotFound      ErrorKind = "tool_not_found"
	ErrKindInvalidOption     ErrorKind = "invalid_option"
	ErrKindProcessTimeout    ErrorKind = "process_timeout"
	ErrKindProcessSpawnError ErrorKind = "process_spawn_error"
	ErrKindToolReportedError ErrorKind = "tool_reported_error"
)

func (e ErrorKind) Valid() bool {
	switch e {
	case ErrKindPathNotFound, ErrKindToolNotFound, ErrKindInvalidOption,
		ErrKindProcessTimeout, ErrKindProcessSpawnError, ErrKindToolReportedError:
		return true
	}
	return false
}
