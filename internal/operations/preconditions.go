package operations

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// checkPreconditions verifies the filesystem state an operation needs
// before anything is located or spawned.
func (s *Service) checkPreconditions(op domain.Operation) *domain.Failure {
	switch op.Kind {
	case domain.KindCompareFiles:
		o := op.CompareFiles
		if f := s.requireFile("left", o.Left); f != nil {
			return f
		}
		if f := s.requireFile("right", o.Right); f != nil {
			return f
		}
		if o.ReportPath != "" {
			return requireParentDir("report", o.ReportPath)
		}

	case domain.KindCompareFolders:
		o := op.CompareFolders
		if f := requireDir("left", o.Left); f != nil {
			return f
		}
		return requireDir("right", o.Right)

	case domain.KindSyncFolders:
		o := op.SyncFolders
		if f := requireDir("source", o.Source); f != nil {
			return f
		}
		fi, err := os.Stat(o.Target)
		switch {
		case err == nil && !fi.IsDir():
			return &domain.Failure{Kind: domain.ErrKindInvalidOption, Message: "target path is not a directory", Path: o.Target}
		case err != nil && (o.PreviewOnly || o.Direction == domain.SyncRightToLeft):
			// Nothing will create it: a preview writes nothing and
			// right-to-left reads from it.
			return domain.PathNotFound("target", o.Target)
		}

	case domain.KindGenerateReport:
		o := op.GenerateReport
		if f := requireExists("left", o.Left); f != nil {
			return f
		}
		if f := requireExists("right", o.Right); f != nil {
			return f
		}
		if o.OutputFile != "" {
			return requireParentDir("output", o.OutputFile)
		}

	case domain.KindMergeFiles:
		o := op.MergeFiles
		if f := s.requireFile("left", o.Left); f != nil {
			return f
		}
		if f := s.requireFile("right", o.Right); f != nil {
			return f
		}
		if o.Base != "" {
			if f := s.requireFile("base", o.Base); f != nil {
				return f
			}
		}
		if o.Output != "" {
			return requireParentDir("output", o.Output)
		}
	}
	return nil
}

func requireExists(role, path string) *domain.Failure {
	if _, err := os.Stat(path); err != nil {
		return domain.PathNotFound(role, path).WithCause(err)
	}
	return nil
}

func requireDir(role, path string) *domain.Failure {
	fi, err := os.Stat(path)
	if err != nil {
		return domain.PathNotFound(role, path).WithCause(err)
	}
	if !fi.IsDir() {
		return &domain.Failure{
			Kind:    domain.ErrKindInvalidOption,
			Message: fmt.Sprintf("%s path is not a directory", role),
			Path:    path,
		}
	}
	return nil
}

func (s *Service) requireFile(role, path string) *domain.Failure {
	fi, err := os.Stat(path)
	if err != nil {
		return domain.PathNotFound(role, path).WithCause(err)
	}
	if fi.IsDir() {
		return &domain.Failure{
			Kind:    domain.ErrKindInvalidOption,
			Message: fmt.Sprintf("%s path is a directory", role),
			Path:    path,
		}
	}
	if fi.Size() > s.opts.MaxFileSize {
		return &domain.Failure{
			Kind: domain.ErrKindInvalidOption,
			Message: fmt.Sprintf("%s file is %s, over the %s limit", role,
				humanize.IBytes(uint64(fi.Size())), humanize.IBytes(uint64(s.opts.MaxFileSize))),
			Path: path,
		}
	}
	return nil
}

func requireParentDir(role, path string) *domain.Failure {
	dir := filepath.Dir(path)
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return &domain.Failure{
			Kind:    domain.ErrKindPathNotFound,
			Message: fmt.Sprintf("%s directory does not exist", role),
			Path:    dir,
		}
	}
	return nil
}

// prepareSyncTarget creates a missing target for syncs that will write
// into it.
func prepareSyncTarget(o *domain.SyncFoldersOptions) *domain.Failure {
	if o.PreviewOnly || o.Direction == domain.SyncRightToLeft {
		return nil
	}
	if err := os.MkdirAll(o.Target, 0o755); err != nil {
		return (&domain.Failure{
			Kind:    domain.ErrKindPathNotFound,
			Message: "cannot create target directory",
			Path:    o.Target,
		}).WithCause(err)
	}
	return nil
}
