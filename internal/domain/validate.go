package domain

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Normalize fills option defaults and rejects unknown enum values and
// missing required fields. It returns a copy; op is not modified.
// Every error it returns is a *Failure of kind invalid_option.
func Normalize(op Operation) (Operation, error) {
	switch op.Kind {
	case KindCompareFiles:
		if op.CompareFiles == nil {
			return op, InvalidOption("compare_files options are required")
		}
		o := *op.CompareFiles
		if err := requirePaths("left", o.Left, "right", o.Right); err != nil {
			return op, err
		}
		if o.OutputFormat == "" {
			o.OutputFormat = OutputText
		}
		if !o.OutputFormat.Valid() {
			return op, InvalidOption("invalid output format %q (use 'text' or 'html')", o.OutputFormat)
		}
		if o.ReportPath != "" && o.OutputFormat != OutputHTML {
			return op, InvalidOption("report_path requires output format 'html'")
		}
		return NewCompareFiles(o), nil

	case KindCompareFolders:
		if op.CompareFolders == nil {
			return op, InvalidOption("compare_folders options are required")
		}
		o := *op.CompareFolders
		if err := requirePaths("left", o.Left, "right", o.Right); err != nil {
			return op, err
		}
		for _, p := range o.Excludes {
			if strings.TrimSpace(p) == "" || strings.Contains(p, ";") || !doublestar.ValidatePattern(p) {
				return op, InvalidOption("invalid exclude pattern %q", p)
			}
		}
		o.Excludes = append([]string(nil), o.Excludes...)
		return NewCompareFolders(o), nil

	case KindSyncFolders:
		if op.SyncFolders == nil {
			return op, InvalidOption("sync_folders options are required")
		}
		o := *op.SyncFolders
		if err := requirePaths("source", o.Source, "target", o.Target); err != nil {
			return op, err
		}
		if o.Direction == "" {
			o.Direction = SyncLeftToRight
		}
		if !o.Direction.Valid() {
			return op, InvalidOption("invalid direction %q (use 'left-to-right', 'right-to-left', or 'bidirectional')", o.Direction)
		}
		return NewSyncFolders(o), nil

	case KindGenerateReport:
		if op.GenerateReport == nil {
			return op, InvalidOption("generate_report options are required")
		}
		o := *op.GenerateReport
		if err := requirePaths("left", o.Left, "right", o.Right); err != nil {
			return op, err
		}
		if o.ReportType == "" {
			o.ReportType = ReportHTML
		}
		if !o.ReportType.Valid() {
			return op, InvalidOption("invalid report type %q (use 'html', 'xml', 'csv', or 'text')", o.ReportType)
		}
		return NewGenerateReport(o), nil

	case KindMergeFiles:
		if op.MergeFiles == nil {
			return op, InvalidOption("merge_files options are required")
		}
		o := *op.MergeFiles
		if err := requirePaths("left", o.Left, "right", o.Right); err != nil {
			return op, err
		}
		return NewMergeFiles(o), nil
	}
	return op, InvalidOption("unknown operation %q", op.Kind)
}

func requirePaths(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return InvalidOption("%s path is required", pairs[i])
		}
	}
	return nil
}
