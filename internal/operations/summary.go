package operations

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// Summarize renders a one-line, human-readable description of res.
func Summarize(res domain.Result) string {
	if res.Failure != nil {
		return fmt.Sprintf("%s failed: %s", res.Operation, res.Failure.Error())
	}
	if res.Outcome == nil {
		return fmt.Sprintf("%s: no result", res.Operation)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", res.Operation, strings.ReplaceAll(string(res.Outcome.Kind), "_", " "))
	if res.Outcome.Detail != "" {
		fmt.Fprintf(&b, ", %s", res.Outcome.Detail)
	}
	fmt.Fprintf(&b, " (exit code %d)", res.Outcome.ExitCode)
	if res.Preview {
		b.WriteString(" [preview]")
	}
	if res.ReportPath != "" {
		fmt.Fprintf(&b, "; report %s at %s", humanize.IBytes(uint64(res.ReportSize)), res.ReportPath)
	}
	if res.PublishedURL != "" {
		fmt.Fprintf(&b, "; published to %s", res.PublishedURL)
	}
	if res.MergeOutput != "" {
		fmt.Fprintf(&b, "; merged into %s", res.MergeOutput)
	}
	return b.String()
}
