package operations

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/bcompare-mcp/bcompare-go/internal/connectors/bcompare"
	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// artifact is the file an operation writes besides its exit code.
type artifact struct {
	path string
	// derived paths were chosen by us, not the caller.
	derived bool
}

// keep points a failure at the artifact, when one was left behind.
func (a artifact) keep(f *domain.Failure) {
	if a.path == "" || f == nil {
		return
	}
	if _, err := os.Stat(a.path); err == nil {
		f.Artifact = a.path
	}
}

// planArtifacts fills in derived output paths so the built command and the
// later collection step agree on them.
func (s *Service) planArtifacts(op *domain.Operation) artifact {
	switch op.Kind {
	case domain.KindCompareFiles:
		o := op.CompareFiles
		if o.OutputFormat != domain.OutputHTML {
			return artifact{}
		}
		if o.ReportPath == "" {
			o.ReportPath = bcompare.ArtifactPath(s.opts.ReportDir, op.Kind, artifactToken(), ".html")
			return artifact{path: o.ReportPath, derived: true}
		}
		return artifact{path: o.ReportPath}

	case domain.KindGenerateReport:
		o := op.GenerateReport
		if o.OutputFile == "" {
			o.OutputFile = bcompare.ArtifactPath(s.opts.ReportDir, op.Kind, artifactToken(), o.ReportType.Extension())
			return artifact{path: o.OutputFile, derived: true}
		}
		return artifact{path: o.OutputFile}

	case domain.KindMergeFiles:
		o := op.MergeFiles
		if o.Output == "" {
			o.Output = bcompare.ArtifactPath(s.opts.ReportDir, op.Kind, artifactToken(), filepath.Ext(o.Left))
			return artifact{path: o.Output, derived: true}
		}
		return artifact{path: o.Output}
	}
	return artifact{}
}

// collectArtifacts runs after a successful classification.
func (s *Service) collectArtifacts(ctx context.Context, op domain.Operation, art artifact, res *domain.Result) {
	switch op.Kind {
	case domain.KindCompareFiles:
		if art.path == "" {
			return
		}
		data, err := os.ReadFile(art.path)
		if err != nil {
			s.opts.Logger.Warn("comparison report missing", "path", art.path, "error", err)
			return
		}
		res.ReportContent = string(data)
		if art.derived {
			s.remove(art.path)
			return
		}
		res.ReportPath = art.path
		res.ReportSize = int64(len(data))

	case domain.KindGenerateReport:
		fi, err := os.Stat(art.path)
		if err != nil || fi.Size() == 0 {
			res.Failure = &domain.Failure{
				Kind:     domain.ErrKindToolReportedError,
				Message:  "report file was not created",
				Path:     art.path,
				ExitCode: res.Outcome.ExitCode,
				Stderr:   res.Stderr,
			}
			art.keep(res.Failure)
			return
		}
		res.ReportPath = art.path
		res.ReportSize = fi.Size()
		s.opts.Logger.Debug("report generated", "path", art.path, "size", humanize.IBytes(uint64(fi.Size())))
		if s.opts.Publisher != nil {
			url, err := s.opts.Publisher.Publish(ctx, art.path, op.GenerateReport.ReportType)
			if err != nil {
				s.opts.Logger.Warn("report publish failed", "path", art.path, "error", err)
				return
			}
			res.PublishedURL = url
		}

	case domain.KindMergeFiles:
		if _, err := os.Stat(art.path); err != nil {
			res.Failure = &domain.Failure{
				Kind:     domain.ErrKindToolReportedError,
				Message:  "merge output was not created",
				Path:     art.path,
				ExitCode: res.Outcome.ExitCode,
				Stderr:   res.Stderr,
			}
			return
		}
		if !art.derived {
			res.MergeOutput = art.path
			return
		}
		data, err := os.ReadFile(art.path)
		if err != nil {
			res.Failure = (&domain.Failure{
				Kind:     domain.ErrKindToolReportedError,
				Message:  "merge output is unreadable",
				Path:     art.path,
				ExitCode: res.Outcome.ExitCode,
			}).WithCause(err)
			art.keep(res.Failure)
			return
		}
		res.MergedContent = string(data)
		s.remove(art.path)
	}
}

func (s *Service) remove(path string) {
	if err := os.Remove(path); err != nil {
		s.opts.Logger.Warn("artifact cleanup failed", "path", path, "error", err)
	}
}
