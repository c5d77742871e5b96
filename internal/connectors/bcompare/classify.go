package bcompare

import (
	"fmt"
	"strings"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// Exit codes returned by the comparison executable.
const (
	// ExitIdentical means the inputs are fully identical.
	ExitIdentical = 0
	// ExitBinaryIdentical means byte-for-byte identical.
	ExitBinaryIdentical = 1
	// ExitRulesIdentical means identical under the active comparison rules.
	ExitRulesIdentical = 2
	// ExitBinaryDifferences means the inputs differ at the byte level.
	ExitBinaryDifferences = 11
	// ExitSimilar means the inputs differ only in unimportant ways.
	ExitSimilar = 12
	// ExitRulesDifferences means the inputs differ under the active rules.
	ExitRulesDifferences = 13
	// ExitConflicts means a merge or sync found conflicting changes.
	ExitConflicts = 14
	// ExitErrorBand is the first code of the tool's failure band.
	ExitErrorBand = 100
)

// excerptLimit bounds stdout/stderr text copied into an Outcome.
const excerptLimit = 500

// ExitEntry is the outcome a documented exit code maps to.
type ExitEntry struct {
	Kind domain.OutcomeKind
	// Detail refines Different outcomes.
	Detail string
}

// ExitCodeTable maps every explicitly documented exit code to its outcome.
// The same table applies to every operation kind.
var ExitCodeTable = map[int]ExitEntry{
	ExitIdentical:         {Kind: domain.OutcomeIdentical},
	ExitBinaryIdentical:   {Kind: domain.OutcomeBinaryIdentical},
	ExitRulesIdentical:    {Kind: domain.OutcomeRulesBasedIdentical},
	ExitBinaryDifferences: {Kind: domain.OutcomeDifferent, Detail: "binary differences"},
	ExitSimilar:           {Kind: domain.OutcomeSimilar},
	ExitRulesDifferences:  {Kind: domain.OutcomeDifferent, Detail: "rules-based differences"},
	ExitConflicts:         {Kind: domain.OutcomeConflict},
}

// Classify maps a completed run to exactly one outcome. No exit code is left
// unclassified: unknown codes below the failure band are generic differences,
// codes at or above it (and signal deaths, reported as negative codes) are
// errors.
func Classify(kind domain.OperationKind, res ProcessResult) domain.Outcome {
	code := res.ExitCode
	out := domain.Outcome{ExitCode: code}

	switch {
	case code < 0:
		out.Kind = domain.OutcomeError
		out.Message = joinNonEmpty("terminated without exit status", excerpt(res.Stderr))
	case code >= ExitErrorBand:
		out.Kind = domain.OutcomeError
		msg := excerpt(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("%s failed with exit code %d", kind, code)
		}
		out.Message = msg
	default:
		if e, ok := ExitCodeTable[code]; ok {
			out.Kind = e.Kind
			out.Detail = e.Detail
			return out
		}
		out.Kind = domain.OutcomeDifferent
		out.Detail = joinNonEmpty(fmt.Sprintf("unclassified result code %d", code), excerpt(res.Stdout))
	}
	return out
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= excerptLimit {
		return s
	}
	cut := excerptLimit
	// Do not split a multi-byte rune.
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "..."
}

func joinNonEmpty(head, tail string) string {
	if tail == "" {
		return head
	}
	return head + ": " + tail
}
