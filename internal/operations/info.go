package operations

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

const (
	helpTimeout  = 10 * time.Second
	helpExcerpt  = 500
	helpArgument = "-help"
)

// ToolInfo describes the installed comparison executable.
type ToolInfo struct {
	Executable string `json:"executable"`
	Platform   string `json:"platform"`
	// Help is the start of the tool's -help output, when it produced any.
	Help     string `json:"help,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// Info locates the executable and captures the head of its -help output.
// A tool that cannot be run still yields its path.
func (s *Service) Info(ctx context.Context) (ToolInfo, error) {
	tool, err := s.locator.Locate()
	if err != nil {
		return ToolInfo{}, (&domain.Failure{Kind: domain.ErrKindToolNotFound, Message: err.Error()}).WithCause(err)
	}
	info := ToolInfo{Executable: tool, Platform: runtime.GOOS + "/" + runtime.GOARCH}

	pr, err := s.runner.Run(ctx, []string{tool, helpArgument}, helpTimeout)
	if err != nil {
		s.opts.Logger.Warn("bcompare -help failed", "error", err)
		info.ExitCode = -1
		return info, nil
	}
	info.ExitCode = pr.ExitCode
	help := strings.TrimSpace(pr.Stdout)
	if help == "" {
		help = strings.TrimSpace(pr.Stderr)
	}
	if r := []rune(help); len(r) > helpExcerpt {
		help = string(r[:helpExcerpt]) + "..."
	}
	info.Help = help
	return info, nil
}

// FormatCatalog lists what the service can compare and produce.
type FormatCatalog struct {
	SupportedFormats []string               `json:"supported_formats"`
	IgnorePatterns   []string               `json:"ignore_patterns"`
	DefaultExcludes  []string               `json:"default_excludes,omitempty"`
	ComparisonTypes  []string               `json:"comparison_types"`
	ReportTypes      []domain.ReportType    `json:"report_types"`
	SyncDirections   []domain.SyncDirection `json:"sync_directions"`
	Operations       []domain.OperationKind `json:"operations"`
}

// Formats returns the configured catalogue.
func (s *Service) Formats() FormatCatalog {
	cat := s.opts.Catalog
	return FormatCatalog{
		SupportedFormats: append([]string(nil), cat.SupportedFormats...),
		IgnorePatterns:   append([]string(nil), cat.IgnorePatterns...),
		DefaultExcludes:  append([]string(nil), cat.DefaultExcludes...),
		ComparisonTypes: []string{
			"text (line by line)", "binary (byte by byte)", "image", "folder", "archive contents",
		},
		ReportTypes:    []domain.ReportType{domain.ReportHTML, domain.ReportXML, domain.ReportCSV, domain.ReportText},
		SyncDirections: []domain.SyncDirection{domain.SyncLeftToRight, domain.SyncRightToLeft, domain.SyncBidirectional},
		Operations:     append([]domain.OperationKind(nil), domain.AllOperationKinds...),
	}
}

// Executable resolves the tool path without running it.
func (s *Service) Executable() (string, error) {
	return s.locator.Locate()
}
