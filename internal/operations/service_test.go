package operations

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/connectors/bcompare"
	"github.com/bcompare-mcp/bcompare-go/internal/domain"
	"github.com/bcompare-mcp/bcompare-go/internal/observability"
	"github.com/bcompare-mcp/bcompare-go/internal/ratelimit"
	"github.com/bcompare-mcp/bcompare-go/internal/testutil"
)

// Tests here exec a shell script and some set FAKE_BC_* variables, so none
// run in parallel.

type spyRunner struct {
	inner *bcompare.Runner
	calls atomic.Int32
}

func (s *spyRunner) Run(ctx context.Context, argv []string, timeout time.Duration) (bcompare.ProcessResult, error) {
	s.calls.Add(1)
	return s.inner.Run(ctx, argv, timeout)
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(_ context.Context, path string, rt domain.ReportType) (string, error) {
	f.published = append(f.published, path)
	return "s3://reports/" + filepath.Base(path), nil
}

type harness struct {
	svc     *Service
	locator *testutil.StaticLocator
	runner  *spyRunner
	dir     string
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		locator: &testutil.StaticLocator{Path: testutil.FakeTool(t)},
		runner:  &spyRunner{inner: bcompare.NewRunner(2)},
		dir:     t.TempDir(),
	}
	if opts.ReportDir == "" {
		opts.ReportDir = t.TempDir()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	h.svc = New(h.locator, h.runner, opts)
	return h
}

func (h *harness) file(t *testing.T, name, content string) string {
	return testutil.WriteFile(t, h.dir, name, content)
}

func TestScenarioSameFileIsIdentical(t *testing.T) {
	h := newHarness(t, Options{})
	f := h.file(t, "a.txt", "hello\n")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: f, Right: f})
	require.Nil(t, res.Failure)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, domain.OutcomeIdentical, res.Outcome.Kind)
	assert.True(t, res.OK())
	assert.True(t, res.Outcome.Same())
	assert.Equal(t, domain.KindCompareFiles, res.Operation)
	assert.Equal(t, []string{h.locator.Path, "-qc", f, f}, res.Command)
	assert.Greater(t, res.Duration, time.Duration(0))
}

func TestScenarioTrailingWhitespace(t *testing.T) {
	h := newHarness(t, Options{})
	left := h.file(t, "left.txt", "hello\nworld\n")
	right := h.file(t, "right.txt", "hello   \nworld\t\n")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{
		Left: left, Right: right, IgnoreWhitespace: true,
	})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeIdentical, res.Outcome.Kind)
	assert.Contains(t, res.Command, "-ignoreunimportant")

	res = h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: left, Right: right})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeDifferent, res.Outcome.Kind)
	assert.Equal(t, "rules-based differences", res.Outcome.Detail)
	assert.True(t, res.OK(), "differences are a successful run")
	assert.False(t, res.Outcome.Same())
}

func TestScenarioMissingLeftNeverSpawns(t *testing.T) {
	h := newHarness(t, Options{})
	right := h.file(t, "right.txt", "x")
	missing := filepath.Join(h.dir, "nope.txt")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: missing, Right: right})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindPathNotFound, res.Failure.Kind)
	assert.True(t, errors.Is(res.Failure, domain.ErrPathNotFound))
	assert.Equal(t, missing, res.Failure.Path)
	assert.Nil(t, res.Outcome)
	assert.Zero(t, h.locator.Calls)
	assert.Zero(t, h.runner.calls.Load())
}

func TestScenarioInvalidDirectionNeverSpawns(t *testing.T) {
	h := newHarness(t, Options{})
	src := t.TempDir()
	dst := t.TempDir()

	res := h.svc.SyncFolders(context.Background(), domain.SyncFoldersOptions{
		Source: src, Target: dst, Direction: "invalid-value",
	})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindInvalidOption, res.Failure.Kind)
	assert.True(t, errors.Is(res.Failure, domain.ErrInvalidOption))
	assert.Contains(t, res.Failure.Message, "invalid-value")
	assert.Zero(t, h.locator.Calls)
	assert.Zero(t, h.runner.calls.Load())
}

func TestScenarioHTMLReportOfIdenticalFiles(t *testing.T) {
	h := newHarness(t, Options{})
	left := h.file(t, "l.txt", "same\n")
	right := h.file(t, "r.txt", "same\n")
	out := filepath.Join(h.dir, "report.html")

	res := h.svc.GenerateReport(context.Background(), domain.GenerateReportOptions{
		Left: left, Right: right, ReportType: domain.ReportHTML, OutputFile: out,
	})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeIdentical, res.Outcome.Kind)
	assert.Equal(t, out, res.ReportPath)
	assert.Greater(t, res.ReportSize, int64(0))

	fi, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, res.ReportSize, fi.Size())
}

func TestGenerateReportDerivedPathAndPublish(t *testing.T) {
	reportDir := t.TempDir()
	pub := &fakePublisher{}
	h := newHarness(t, Options{ReportDir: reportDir, Publisher: pub})
	left := h.file(t, "l.txt", "a\n")
	right := h.file(t, "r.txt", "b\n")

	res := h.svc.GenerateReport(context.Background(), domain.GenerateReportOptions{
		Left: left, Right: right, ReportType: domain.ReportCSV,
	})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeDifferent, res.Outcome.Kind)
	assert.Equal(t, reportDir, filepath.Dir(res.ReportPath))
	base := filepath.Base(res.ReportPath)
	assert.True(t, strings.HasPrefix(base, "bc_generate_report_"), base)
	assert.True(t, strings.HasSuffix(base, ".csv"), base)
	assert.Equal(t, []string{res.ReportPath}, pub.published)
	assert.Equal(t, "s3://reports/"+base, res.PublishedURL)
}

func TestGenerateReportEmptyOutputIsFailure(t *testing.T) {
	h := newHarness(t, Options{})
	left := h.file(t, "l.txt", "a\n")
	// Exit 0 without a -reportfile: the fake never writes the report.
	h.locator.Path = testutil.WriteScript(t, "bcompare", "#!/bin/sh\nexit 0\n")

	res := h.svc.GenerateReport(context.Background(), domain.GenerateReportOptions{Left: left, Right: left})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindToolReportedError, res.Failure.Kind)
	assert.Equal(t, "report file was not created", res.Failure.Message)
	assert.False(t, res.OK())
}

func TestCompareFilesHTMLDerivedReportIsCleanedUp(t *testing.T) {
	reportDir := t.TempDir()
	h := newHarness(t, Options{ReportDir: reportDir})
	left := h.file(t, "l.txt", "a\n")
	right := h.file(t, "r.txt", "b\n")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{
		Left: left, Right: right, OutputFormat: domain.OutputHTML,
	})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeDifferent, res.Outcome.Kind)
	assert.Contains(t, res.ReportContent, "<html>")
	assert.Empty(t, res.ReportPath)

	entries, err := os.ReadDir(reportDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCompareFilesHTMLExplicitReportIsKept(t *testing.T) {
	h := newHarness(t, Options{})
	left := h.file(t, "l.txt", "a\n")
	report := filepath.Join(h.dir, "out.html")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{
		Left: left, Right: left, OutputFormat: domain.OutputHTML, ReportPath: report,
	})
	require.Nil(t, res.Failure)
	assert.Equal(t, report, res.ReportPath)
	assert.FileExists(t, report)
	assert.NotEmpty(t, res.ReportContent)
}

func TestToolReportedError(t *testing.T) {
	t.Setenv("FAKE_BC_EXIT", "104")
	t.Setenv("FAKE_BC_STDERR", "license expired")
	h := newHarness(t, Options{})
	f := h.file(t, "a.txt", "x")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: f, Right: f})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindToolReportedError, res.Failure.Kind)
	assert.Equal(t, 104, res.Failure.ExitCode)
	assert.Contains(t, res.Failure.Stderr, "license expired")
	require.NotNil(t, res.Outcome)
	assert.Equal(t, domain.OutcomeError, res.Outcome.Kind)
	assert.Contains(t, res.Failure.Error(), "exit code 104")
}

func TestUnclassifiedExitCodeIsGenericDifference(t *testing.T) {
	t.Setenv("FAKE_BC_EXIT", "7")
	h := newHarness(t, Options{})
	f := h.file(t, "a.txt", "x")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: f, Right: f})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeDifferent, res.Outcome.Kind)
	assert.Equal(t, "unclassified result code 7: forced result 7", res.Outcome.Detail)
}

func TestToolNotFound(t *testing.T) {
	h := newHarness(t, Options{})
	h.locator.Path = ""
	h.locator.Err = errors.New("no bcompare here")
	f := h.file(t, "a.txt", "x")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: f, Right: f})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindToolNotFound, res.Failure.Kind)
	assert.True(t, errors.Is(res.Failure, domain.ErrToolNotFound))
	assert.Zero(t, h.runner.calls.Load())
}

func TestVanishedExecutableIsToolNotFound(t *testing.T) {
	h := newHarness(t, Options{})
	h.locator.Path = filepath.Join(t.TempDir(), "uninstalled")
	f := h.file(t, "a.txt", "x")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: f, Right: f})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindToolNotFound, res.Failure.Kind)
}

func TestTimeout(t *testing.T) {
	t.Setenv("FAKE_BC_SLEEP", "10")
	h := newHarness(t, Options{Timeout: 300 * time.Millisecond})
	f := h.file(t, "a.txt", "x")

	start := time.Now()
	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: f, Right: f})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindProcessTimeout, res.Failure.Kind)
	assert.True(t, errors.Is(res.Failure, domain.ErrProcessTimeout))
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestFilePreconditions(t *testing.T) {
	h := newHarness(t, Options{MaxFileSize: 4})
	small := h.file(t, "small.txt", "abc")
	big := h.file(t, "big.txt", "0123456789")

	res := h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: small, Right: big})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindInvalidOption, res.Failure.Kind)
	assert.Equal(t, big, res.Failure.Path)
	assert.Contains(t, res.Failure.Message, "10 B")

	res = h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: h.dir, Right: small})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindInvalidOption, res.Failure.Kind)
	assert.Contains(t, res.Failure.Message, "is a directory")

	res = h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{
		Left: small, Right: small, OutputFormat: domain.OutputHTML,
		ReportPath: filepath.Join(h.dir, "missing", "r.html"),
	})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindPathNotFound, res.Failure.Kind)
	assert.Zero(t, h.runner.calls.Load())
}

func TestCompareFolders(t *testing.T) {
	h := newHarness(t, Options{Catalog: config.Catalog{DefaultExcludes: []string{"*.log"}}})
	left := t.TempDir()
	right := t.TempDir()
	testutil.WriteFile(t, left, "sub/a.txt", "1")
	testutil.WriteFile(t, right, "sub/a.txt", "1")

	res := h.svc.CompareFolders(context.Background(), domain.CompareFoldersOptions{Left: left, Right: right, Recursive: true})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeIdentical, res.Outcome.Kind)
	assert.Contains(t, res.Command, "-filters=-*.log")

	testutil.WriteFile(t, right, "sub/a.txt", "2")
	res = h.svc.CompareFolders(context.Background(), domain.CompareFoldersOptions{
		Left: left, Right: right, Recursive: true, Excludes: []string{"*.tmp"},
	})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeDifferent, res.Outcome.Kind)
	assert.Contains(t, res.Command, "-filters=-*.tmp")
	assert.NotContains(t, res.Command, "-filters=-*.log")

	f := h.file(t, "file.txt", "x")
	res = h.svc.CompareFolders(context.Background(), domain.CompareFoldersOptions{Left: f, Right: right})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindInvalidOption, res.Failure.Kind)
}

func TestCompareFoldersNoDefaultExcludes(t *testing.T) {
	h := newHarness(t, Options{Catalog: config.Catalog{DefaultExcludes: []string{"*.log"}}})
	left := t.TempDir()
	right := t.TempDir()

	req := CompareFoldersRequest{LeftFolder: left, RightFolder: right, NoDefaultExcludes: true}
	res := h.svc.Run(context.Background(), req.Operation())
	require.Nil(t, res.Failure)
	assert.NotContains(t, res.Command, "-filters")
	assert.NotContains(t, res.Command, "*.log")

	req.NoDefaultExcludes = false
	res = h.svc.Run(context.Background(), req.Operation())
	require.Nil(t, res.Failure)
	assert.Contains(t, res.Command, "-filters=-*.log")
}

func TestSyncFolders(t *testing.T) {
	h := newHarness(t, Options{})
	src := t.TempDir()
	testutil.WriteFile(t, src, "a.txt", "payload")
	target := filepath.Join(t.TempDir(), "new", "target")

	preview := h.svc.SyncFolders(context.Background(), domain.SyncFoldersOptions{
		Source: src, Target: target, PreviewOnly: true,
	})
	require.NotNil(t, preview.Failure, "a preview never creates the target")
	assert.Equal(t, domain.ErrKindPathNotFound, preview.Failure.Kind)
	assert.NoDirExists(t, target)

	res := h.svc.SyncFolders(context.Background(), domain.SyncFoldersOptions{Source: src, Target: target})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeIdentical, res.Outcome.Kind)
	assert.False(t, res.Preview)
	data, err := os.ReadFile(filepath.Join(target, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	res = h.svc.SyncFolders(context.Background(), domain.SyncFoldersOptions{
		Source: src, Target: target, PreviewOnly: true, DeleteOrphans: true,
	})
	require.Nil(t, res.Failure)
	assert.True(t, res.Preview)
	assert.Contains(t, res.Command, "-silent")
	assert.NotContains(t, res.Command, "delete:left->right")
}

func TestSyncTargetNotCreatedWhenLaunchFails(t *testing.T) {
	t.Run("tool not found", func(t *testing.T) {
		h := newHarness(t, Options{})
		h.locator.Path = ""
		h.locator.Err = errors.New("no bcompare here")
		target := filepath.Join(t.TempDir(), "new")

		res := h.svc.SyncFolders(context.Background(), domain.SyncFoldersOptions{Source: t.TempDir(), Target: target})
		require.NotNil(t, res.Failure)
		assert.Equal(t, domain.ErrKindToolNotFound, res.Failure.Kind)
		assert.Empty(t, res.Failure.Artifact)
		assert.NoDirExists(t, target)
	})

	t.Run("no launch slot", func(t *testing.T) {
		h := newHarness(t, Options{Limiter: ratelimit.NewLaunchLimiter(1)})
		target := filepath.Join(t.TempDir(), "new")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := h.svc.SyncFolders(ctx, domain.SyncFoldersOptions{Source: t.TempDir(), Target: target})
		require.NotNil(t, res.Failure)
		assert.Equal(t, domain.ErrKindProcessTimeout, res.Failure.Kind)
		assert.NoDirExists(t, target)
		assert.Zero(t, h.runner.calls.Load())
	})
}

func TestSyncRightToLeftNeedsTarget(t *testing.T) {
	h := newHarness(t, Options{})
	missing := filepath.Join(t.TempDir(), "missing")

	res := h.svc.SyncFolders(context.Background(), domain.SyncFoldersOptions{
		Source: t.TempDir(), Target: missing, Direction: domain.SyncRightToLeft,
	})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindPathNotFound, res.Failure.Kind)
	assert.NoDirExists(t, missing)
}

func TestMergeFiles(t *testing.T) {
	reportDir := t.TempDir()
	h := newHarness(t, Options{ReportDir: reportDir})
	base := h.file(t, "base.go", "package a\n")
	left := h.file(t, "left.go", "package a\n")
	right := h.file(t, "right.go", "package a // changed\n")

	res := h.svc.MergeFiles(context.Background(), domain.MergeFilesOptions{Left: left, Right: right, Base: base})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeIdentical, res.Outcome.Kind)
	assert.Equal(t, "package a // changed\n", res.MergedContent)
	assert.Empty(t, res.MergeOutput)
	entries, err := os.ReadDir(reportDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "derived merge output is removed")

	out := filepath.Join(h.dir, "merged.go")
	res = h.svc.MergeFiles(context.Background(), domain.MergeFilesOptions{Left: left, Right: right, Output: out})
	require.Nil(t, res.Failure)
	assert.Equal(t, domain.OutcomeConflict, res.Outcome.Kind)
	assert.True(t, res.OK())
	assert.Equal(t, out, res.MergeOutput)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<<<<<<<")

	res = h.svc.MergeFiles(context.Background(), domain.MergeFilesOptions{
		Left: left, Right: right, Base: filepath.Join(h.dir, "gone.go"),
	})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindPathNotFound, res.Failure.Kind)
}

func TestCancelledContext(t *testing.T) {
	t.Setenv("FAKE_BC_SLEEP", "10")
	h := newHarness(t, Options{})
	f := h.file(t, "a.txt", "x")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	res := h.svc.CompareFiles(ctx, domain.CompareFilesOptions{Left: f, Right: f})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindProcessTimeout, res.Failure.Kind)
	assert.Equal(t, "canceled by caller", res.Failure.Message)
}

func TestAlreadyCancelledContext(t *testing.T) {
	h := newHarness(t, Options{})
	f := h.file(t, "a.txt", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := h.svc.CompareFiles(ctx, domain.CompareFilesOptions{Left: f, Right: f})
	require.NotNil(t, res.Failure)
	assert.Equal(t, domain.ErrKindProcessTimeout, res.Failure.Kind)
	assert.Equal(t, "canceled by caller", res.Failure.Message)
}

func TestTelemetry(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	metrics, err := observability.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)
	spans := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)).Tracer("test")

	h := newHarness(t, Options{Metrics: metrics, Tracer: tracer})
	f := h.file(t, "a.txt", "x")
	h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: f, Right: f})
	h.svc.CompareFiles(context.Background(), domain.CompareFilesOptions{Left: f + ".missing", Right: f})

	ended := spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "bcompare.compare_files", ended[0].Name())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["bcompare.operations"])
	assert.True(t, names["bcompare.failures"])
	assert.True(t, names["bcompare.process.duration_seconds"])
}

func TestInfo(t *testing.T) {
	h := newHarness(t, Options{})

	info, err := h.svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, h.locator.Path, info.Executable)
	assert.Contains(t, info.Help, "Beyond Compare (fake)")
	assert.Equal(t, 0, info.ExitCode)

	h.locator.Err = errors.New("missing")
	_, err = h.svc.Info(context.Background())
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}

func TestFormats(t *testing.T) {
	h := newHarness(t, Options{Catalog: config.DefaultCatalog()})

	cat := h.svc.Formats()
	assert.Contains(t, cat.SupportedFormats, ".json")
	assert.Len(t, cat.ReportTypes, 4)
	assert.Equal(t, domain.AllOperationKinds, cat.Operations)

	cat.SupportedFormats[0] = "mutated"
	assert.NotEqual(t, "mutated", h.svc.Formats().SupportedFormats[0])
}
