package domain

import "time"

// CompareFilesOptions configures a two-file comparison.
type CompareFilesOptions struct {
	Left             string       `json:"left"`
	Right            string       `json:"right"`
	IgnoreCase       bool         `json:"ignore_case,omitempty"`
	IgnoreWhitespace bool         `json:"ignore_whitespace,omitempty"`
	OutputFormat     OutputFormat `json:"output_format,omitempty"`
	// ReportPath is where an html report is written. Derived when empty.
	ReportPath string `json:"report_path,omitempty"`
}

// CompareFoldersOptions configures a two-folder comparison.
type CompareFoldersOptions struct {
	Left      string `json:"left"`
	Right     string `json:"right"`
	Recursive bool   `json:"recursive"`

	// Excludes left empty fall back to the catalog's default excludes
	// unless NoDefaultExcludes is set.
	Excludes          []string `json:"excludes,omitempty"`
	NoDefaultExcludes bool     `json:"no_default_excludes,omitempty"`
}

// SyncFoldersOptions configures a folder synchronization.
type SyncFoldersOptions struct {
	Source        string        `json:"source"`
	Target        string        `json:"target"`
	Direction     SyncDirection `json:"direction,omitempty"`
	DeleteOrphans bool          `json:"delete_orphans,omitempty"`
	PreviewOnly   bool          `json:"preview_only"`
}

// GenerateReportOptions configures report generation.
type GenerateReportOptions struct {
	Left       string     `json:"left"`
	Right      string     `json:"right"`
	ReportType ReportType `json:"report_type,omitempty"`
	OutputFile string     `json:"output_file,omitempty"`
}

// MergeFilesOptions configures a two- or three-way merge.
type MergeFilesOptions struct {
	Left  string `json:"left"`
	Right string `json:"right"`
	Base  string `json:"base,omitempty"`
	// Output is the merged file. Derived (and cleaned up) when empty.
	Output string `json:"output,omitempty"`
}

// Operation is a tagged variant: Kind selects which option payload is set.
// Exactly one payload pointer is non-nil for a well-formed Operation.
type Operation struct {
	Kind           OperationKind          `json:"kind"`
	CompareFiles   *CompareFilesOptions   `json:"compare_files,omitempty"`
	CompareFolders *CompareFoldersOptions `json:"compare_folders,omitempty"`
	SyncFolders    *SyncFoldersOptions    `json:"sync_folders,omitempty"`
	GenerateReport *GenerateReportOptions `json:"generate_report,omitempty"`
	MergeFiles     *MergeFilesOptions     `json:"merge_files,omitempty"`
}

func NewCompareFiles(o CompareFilesOptions) Operation {
	return Operation{Kind: KindCompareFiles, CompareFiles: &o}
}

func NewCompareFolders(o CompareFoldersOptions) Operation {
	return Operation{Kind: KindCompareFolders, CompareFolders: &o}
}

func NewSyncFolders(o SyncFoldersOptions) Operation {
	return Operation{Kind: KindSyncFolders, SyncFolders: &o}
}

func NewGenerateReport(o GenerateReportOptions) Operation {
	return Operation{Kind: KindGenerateReport, GenerateReport: &o}
}

func NewMergeFiles(o MergeFilesOptions) Operation {
	return Operation{Kind: KindMergeFiles, MergeFiles: &o}
}

// Outcome is the classification of a completed tool run.
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	ExitCode int         `json:"exit_code"`
	// Detail refines Different outcomes ("binary differences", ...).
	Detail string `json:"detail,omitempty"`
	// Message carries tool stderr for Error outcomes.
	Message string `json:"message,omitempty"`
}

// Succeeded reports whether the tool considered the run successful
// (exit code below the failure band). It says nothing about sameness.
func (o Outcome) Succeeded() bool {
	return o.ExitCode >= 0 && o.ExitCode < 100
}

// Same reports whether the outcome is one of the identical variants.
func (o Outcome) Same() bool {
	switch o.Kind {
	case OutcomeIdentical, OutcomeBinaryIdentical, OutcomeRulesBasedIdentical:
		return true
	}
	return false
}

// Result is everything a front-end needs to render one operation.
type Result struct {
	Operation OperationKind `json:"operation"`
	Outcome   *Outcome      `json:"outcome,omitempty"`
	Failure   *Failure      `json:"failure,omitempty"`
	Command   []string      `json:"command,omitempty"`
	Stdout    string        `json:"stdout,omitempty"`
	Stderr    string        `json:"stderr,omitempty"`

	ReportPath    string `json:"report_path,omitempty"`
	ReportSize    int64  `json:"report_size,omitempty"`
	ReportContent string `json:"report_content,omitempty"`
	PublishedURL  string `json:"published_url,omitempty"`

	MergeOutput   string `json:"merge_output,omitempty"`
	MergedContent string `json:"merged_content,omitempty"`

	Preview  bool          `json:"preview,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// OK reports whether the operation produced an outcome the tool considered
// successful.
func (r Result) OK() bool {
	return r.Failure == nil && r.Outcome != nil && r.Outcome.Succeeded()
}
