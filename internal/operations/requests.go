package operations

import (
	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// Request payloads shared by the MCP tools and the HTTP API. Field names
// are the public parameter names; defaults that differ from Go zero values
// use pointers.

type CompareFilesRequest struct {
	LeftFile         string `json:"left_file" jsonschema:"path to the first file to compare"`
	RightFile        string `json:"right_file" jsonschema:"path to the second file to compare"`
	OutputFormat     string `json:"output_format,omitempty" jsonschema:"'text' (default) or 'html'"`
	IgnoreCase       bool   `json:"ignore_case,omitempty" jsonschema:"ignore case differences"`
	IgnoreWhitespace bool   `json:"ignore_whitespace,omitempty" jsonschema:"ignore unimportant whitespace differences"`
	ReportPath       string `json:"report_path,omitempty" jsonschema:"where to keep the html report; a temporary file is used when empty"`
}

func (r CompareFilesRequest) Operation() domain.Operation {
	return domain.NewCompareFiles(domain.CompareFilesOptions{
		Left:             r.LeftFile,
		Right:            r.RightFile,
		IgnoreCase:       r.IgnoreCase,
		IgnoreWhitespace: r.IgnoreWhitespace,
		OutputFormat:     domain.OutputFormat(r.OutputFormat),
		ReportPath:       r.ReportPath,
	})
}

type CompareFoldersRequest struct {
	LeftFolder        string   `json:"left_folder" jsonschema:"path to the first folder to compare"`
	RightFolder       string   `json:"right_folder" jsonschema:"path to the second folder to compare"`
	Recursive         *bool    `json:"recursive,omitempty" jsonschema:"compare subfolders (default true)"`
	Excludes          []string `json:"excludes,omitempty" jsonschema:"glob patterns to leave out of the comparison; the server defaults apply when empty"`
	NoDefaultExcludes bool     `json:"no_default_excludes,omitempty" jsonschema:"skip the server's default excludes when excludes is empty"`
}

func (r CompareFoldersRequest) Operation() domain.Operation {
	return domain.NewCompareFolders(domain.CompareFoldersOptions{
		Left:              r.LeftFolder,
		Right:             r.RightFolder,
		Recursive:         boolOr(r.Recursive, true),
		Excludes:          r.Excludes,
		NoDefaultExcludes: r.NoDefaultExcludes,
	})
}

type SyncFoldersRequest struct {
	SourceFolder  string `json:"source_folder" jsonschema:"path to the source folder"`
	TargetFolder  string `json:"target_folder" jsonschema:"path to the target folder"`
	Direction     string `json:"direction,omitempty" jsonschema:"'left-to-right' (default), 'right-to-left' or 'bidirectional'"`
	DeleteOrphans bool   `json:"delete_orphans,omitempty" jsonschema:"delete target files that do not exist in the source"`
	PreviewOnly   *bool  `json:"preview_only,omitempty" jsonschema:"only show what would change (default true)"`
}

func (r SyncFoldersRequest) Operation() domain.Operation {
	return domain.NewSyncFolders(domain.SyncFoldersOptions{
		Source:        r.SourceFolder,
		Target:        r.TargetFolder,
		Direction:     domain.SyncDirection(r.Direction),
		DeleteOrphans: r.DeleteOrphans,
		PreviewOnly:   boolOr(r.PreviewOnly, true),
	})
}

type GenerateReportRequest struct {
	LeftPath   string `json:"left_path" jsonschema:"path to the left file or folder"`
	RightPath  string `json:"right_path" jsonschema:"path to the right file or folder"`
	ReportType string `json:"report_type,omitempty" jsonschema:"'html' (default), 'xml', 'csv' or 'text'"`
	OutputFile string `json:"output_file,omitempty" jsonschema:"where to write the report; derived when empty"`
}

func (r GenerateReportRequest) Operation() domain.Operation {
	return domain.NewGenerateReport(domain.GenerateReportOptions{
		Left:       r.LeftPath,
		Right:      r.RightPath,
		ReportType: domain.ReportType(r.ReportType),
		OutputFile: r.OutputFile,
	})
}

type MergeFilesRequest struct {
	LeftFile   string `json:"left_file" jsonschema:"path to the left version"`
	RightFile  string `json:"right_file" jsonschema:"path to the right version"`
	BaseFile   string `json:"base_file,omitempty" jsonschema:"common ancestor for a three-way merge"`
	OutputFile string `json:"output_file,omitempty" jsonschema:"where to write the merge; returned inline when empty"`
}

func (r MergeFilesRequest) Operation() domain.Operation {
	return domain.NewMergeFiles(domain.MergeFilesOptions{
		Left:   r.LeftFile,
		Right:  r.RightFile,
		Base:   r.BaseFile,
		Output: r.OutputFile,
	})
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
