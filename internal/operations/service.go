// Package operations sequences one comparison operation end to end:
// validation, filesystem preconditions, locating and running the tool,
// classifying its exit code, and collecting or cleaning up artifacts.
// Every failure is reported in the returned Result; nothing is thrown.
package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/connectors/bcompare"
	"github.com/bcompare-mcp/bcompare-go/internal/domain"
	"github.com/bcompare-mcp/bcompare-go/internal/observability"
	"github.com/bcompare-mcp/bcompare-go/internal/ratelimit"
)

// Locator resolves the comparison executable.
type Locator interface {
	Locate() (string, error)
}

// Runner executes an argument vector under a timeout.
type Runner interface {
	Run(ctx context.Context, argv []string, timeout time.Duration) (bcompare.ProcessResult, error)
}

// Publisher uploads a generated report and returns where it went.
type Publisher interface {
	Publish(ctx context.Context, localPath string, rt domain.ReportType) (string, error)
}

// Options tunes a Service. Zero values mean defaults.
type Options struct {
	Timeout     time.Duration
	MaxFileSize int64
	// ReportDir holds derived artifacts; empty means the OS temp dir.
	ReportDir string
	Catalog   config.Catalog

	Limiter   *ratelimit.LaunchLimiter
	Publisher Publisher
	Metrics   *observability.Metrics
	Tracer    trace.Tracer
	Logger    *slog.Logger
}

// Service is the single entry point front-ends call.
type Service struct {
	locator Locator
	runner  Runner
	opts    Options
}

// New wires a Service. The locator and runner are shared by every call.
func New(locator Locator, runner Runner, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultTimeout
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = config.DefaultMaxFileSize
	}
	if opts.Tracer == nil {
		opts.Tracer = observability.Tracer()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{locator: locator, runner: runner, opts: opts}
}

func (s *Service) CompareFiles(ctx context.Context, o domain.CompareFilesOptions) domain.Result {
	return s.Run(ctx, domain.NewCompareFiles(o))
}

func (s *Service) CompareFolders(ctx context.Context, o domain.CompareFoldersOptions) domain.Result {
	return s.Run(ctx, domain.NewCompareFolders(o))
}

func (s *Service) SyncFolders(ctx context.Context, o domain.SyncFoldersOptions) domain.Result {
	return s.Run(ctx, domain.NewSyncFolders(o))
}

func (s *Service) GenerateReport(ctx context.Context, o domain.GenerateReportOptions) domain.Result {
	return s.Run(ctx, domain.NewGenerateReport(o))
}

func (s *Service) MergeFiles(ctx context.Context, o domain.MergeFilesOptions) domain.Result {
	return s.Run(ctx, domain.NewMergeFiles(o))
}

// Run executes op and always returns a Result; exactly one of
// Result.Outcome (possibly an error outcome) or a bare Result.Failure
// describes what happened.
func (s *Service) Run(ctx context.Context, op domain.Operation) domain.Result {
	start := time.Now()
	ctx, span := s.opts.Tracer.Start(ctx, "bcompare."+string(op.Kind),
		trace.WithAttributes(attribute.String("bcompare.op", string(op.Kind))))
	defer span.End()

	res := s.run(ctx, op)
	res.Operation = op.Kind
	res.Duration = time.Since(start)

	s.observe(ctx, span, res)
	return res
}

func (s *Service) run(ctx context.Context, op domain.Operation) domain.Result {
	op, err := domain.Normalize(op)
	if err != nil {
		return failed(err)
	}
	if op.Kind == domain.KindCompareFolders && len(op.CompareFolders.Excludes) == 0 &&
		!op.CompareFolders.NoDefaultExcludes && len(s.opts.Catalog.DefaultExcludes) > 0 {
		op.CompareFolders.Excludes = append([]string(nil), s.opts.Catalog.DefaultExcludes...)
	}

	if f := s.checkPreconditions(op); f != nil {
		return domain.Result{Failure: f}
	}
	art := s.planArtifacts(&op)

	if err := s.opts.Limiter.Wait(ctx, op.Kind); err != nil {
		return domain.Result{Failure: (&domain.Failure{
			Kind:    domain.ErrKindProcessTimeout,
			Message: "gave up waiting for a launch slot",
		}).WithCause(err)}
	}

	tool, err := s.locator.Locate()
	if err != nil {
		return domain.Result{Failure: (&domain.Failure{
			Kind:    domain.ErrKindToolNotFound,
			Message: err.Error(),
		}).WithCause(err)}
	}

	// Created only once a launch is certain, so earlier failures leave
	// nothing behind.
	if op.Kind == domain.KindSyncFolders {
		if f := prepareSyncTarget(op.SyncFolders); f != nil {
			return domain.Result{Failure: f}
		}
	}

	argv := bcompare.Build(op, tool)
	res := domain.Result{Command: argv}
	if op.Kind == domain.KindSyncFolders {
		res.Preview = op.SyncFolders.PreviewOnly
	}

	pr, err := s.runner.Run(ctx, argv, s.opts.Timeout)
	if err != nil {
		res.Failure = processFailure(err)
		res.Stdout, res.Stderr = partialOutput(err)
		art.keep(res.Failure)
		return res
	}
	res.Stdout = pr.Stdout
	res.Stderr = pr.Stderr
	s.opts.Metrics.RecordProcess(ctx, string(op.Kind), pr.Duration)

	outcome := bcompare.Classify(op.Kind, pr)
	res.Outcome = &outcome
	if outcome.Kind == domain.OutcomeError {
		res.Failure = &domain.Failure{
			Kind:     domain.ErrKindToolReportedError,
			Message:  outcome.Message,
			ExitCode: outcome.ExitCode,
			Stderr:   pr.Stderr,
		}
		art.keep(res.Failure)
		return res
	}

	s.collectArtifacts(ctx, op, art, &res)
	return res
}

func (s *Service) observe(ctx context.Context, span trace.Span, res domain.Result) {
	log := s.opts.Logger.With("op", res.Operation, "duration", res.Duration)
	if res.Outcome != nil {
		span.SetAttributes(
			attribute.String("bcompare.outcome", string(res.Outcome.Kind)),
			attribute.Int("bcompare.exit_code", res.Outcome.ExitCode),
		)
		s.opts.Metrics.RecordOutcome(ctx, string(res.Operation), string(res.Outcome.Kind))
		log = log.With("exit_code", res.Outcome.ExitCode, "outcome", res.Outcome.Kind)
	}
	if res.Failure != nil {
		span.SetStatus(codes.Error, res.Failure.Error())
		s.opts.Metrics.RecordFailure(ctx, string(res.Operation), string(res.Failure.Kind))
		log.Warn("bcompare operation failed", "kind", res.Failure.Kind, "error", res.Failure.Message)
		return
	}
	log.Debug("bcompare operation completed")
}

// processFailure maps a runner error onto the failure taxonomy.
func processFailure(err error) *domain.Failure {
	var pf *bcompare.ProcessFailure
	if !errors.As(err, &pf) {
		return (&domain.Failure{Kind: domain.ErrKindProcessSpawnError, Message: err.Error()}).WithCause(err)
	}
	f := &domain.Failure{Message: pf.Detail, Stderr: pf.Stderr}
	switch pf.Reason {
	case bcompare.ReasonNotFound:
		f.Kind = domain.ErrKindToolNotFound
	case bcompare.ReasonTimedOut:
		f.Kind = domain.ErrKindProcessTimeout
	default:
		f.Kind = domain.ErrKindProcessSpawnError
	}
	return f.WithCause(err)
}

func partialOutput(err error) (string, string) {
	var pf *bcompare.ProcessFailure
	if errors.As(err, &pf) {
		return pf.Stdout, pf.Stderr
	}
	return "", ""
}

func failed(err error) domain.Result {
	if f := domain.AsFailure(err); f != nil {
		return domain.Result{Failure: f}
	}
	return domain.Result{Failure: (&domain.Failure{
		Kind:    domain.ErrKindInvalidOption,
		Message: err.Error(),
	}).WithCause(err)}
}

// artifactToken is unique per call: <pid>_<uuid>.
func artifactToken() string {
	return fmt.Sprintf("%d_%s", os.Getpid(), uuid.NewString())
}
