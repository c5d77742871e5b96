package bcompare

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// Command-line switches understood by the comparison executable.
const (
	flagQuickCompare = "-qc"
	flagSilent       = "-silent"
	flagIgnoreCase   = "-ignorecase"
	flagIgnoreWS     = "-ignoreunimportant"
	flagRecurse      = "-recurse"
	flagFilters      = "-filters="
	flagSync         = "-sync"
	flagReport       = "-report"
	flagReportFile   = "-reportfile"
	flagAutoMerge    = "-automerge"
)

// ArtifactPath returns <dir>/bc_<kind>_<token><ext>. dir defaults to the
// platform temp directory.
func ArtifactPath(dir string, kind domain.OperationKind, token, ext string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("bc_%s_%s%s", kind, token, ext))
}

// processToken is the fallback artifact token: unique per process and stable
// within it, so repeated builds stay byte-identical.
func processToken() string {
	return fmt.Sprintf("%d", os.Getpid())
}

// Build maps a normalized operation to the exact argument vector, with
// toolPath as element 0. Each path occupies exactly one element.
// Build panics on an operation that did not pass domain.Normalize.
func Build(op domain.Operation, toolPath string) []string {
	argv := []string{toolPath}

	switch op.Kind {
	case domain.KindCompareFiles:
		o := op.CompareFiles
		if o.OutputFormat == domain.OutputHTML {
			argv = append(argv, flagSilent)
		} else {
			argv = append(argv, flagQuickCompare)
		}
		if o.IgnoreCase {
			argv = append(argv, flagIgnoreCase)
		}
		if o.IgnoreWhitespace {
			argv = append(argv, flagIgnoreWS)
		}
		argv = append(argv, o.Left, o.Right)
		if o.OutputFormat == domain.OutputHTML {
			report := o.ReportPath
			if report == "" {
				report = ArtifactPath("", op.Kind, processToken(), ".html")
			}
			argv = append(argv, flagReportFile, report, flagReport, string(domain.ReportHTML))
		}

	case domain.KindCompareFolders:
		o := op.CompareFolders
		argv = append(argv, flagQuickCompare)
		if o.Recursive {
			argv = append(argv, flagRecurse)
		}
		if len(o.Excludes) > 0 {
			argv = append(argv, filterArg(o.Excludes))
		}
		argv = append(argv, o.Left, o.Right)

	case domain.KindSyncFolders:
		o := op.SyncFolders
		arrow := syncArrow(o.Direction)
		if o.PreviewOnly {
			argv = append(argv, flagSilent)
		}
		argv = append(argv, flagSync, "update:"+arrow)
		// Orphan handling writes to the target, so previews never carry it.
		if o.DeleteOrphans && !o.PreviewOnly {
			argv = append(argv, "create:"+arrow, "delete:"+arrow)
		}
		argv = append(argv, o.Source, o.Target)

	case domain.KindGenerateReport:
		o := op.GenerateReport
		if !o.ReportType.Valid() {
			panic(fmt.Sprintf("bcompare: unnormalized report type %q", o.ReportType))
		}
		out := o.OutputFile
		if out == "" {
			out = ArtifactPath("", op.Kind, processToken(), o.ReportType.Extension())
		}
		argv = append(argv, flagSilent, flagReport, string(o.ReportType), o.Left, o.Right, flagReportFile, out)

	case domain.KindMergeFiles:
		o := op.MergeFiles
		out := o.Output
		if out == "" {
			out = ArtifactPath("", op.Kind, processToken(), filepath.Ext(o.Left))
		}
		argv = append(argv, o.Left, o.Right)
		if o.Base != "" {
			argv = append(argv, o.Base)
		}
		argv = append(argv, out, flagAutoMerge)

	default:
		panic(fmt.Sprintf("bcompare: unknown operation kind %q", op.Kind))
	}
	return argv
}

func syncArrow(d domain.SyncDirection) string {
	switch d {
	case domain.SyncLeftToRight:
		return "left->right"
	case domain.SyncRightToLeft:
		return "right->left"
	case domain.SyncBidirectional:
		return "left<->right"
	}
	panic(fmt.Sprintf("bcompare: unnormalized sync direction %q", d))
}

// filterArg renders exclude globs as a single -filters= element.
func filterArg(excludes []string) string {
	parts := make([]string, len(excludes))
	for i, p := range excludes {
		parts[i] = "-" + p
	}
	return flagFilters + strings.Join(parts, ";")
}
