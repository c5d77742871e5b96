// Package testutil provides test doubles shared across packages: scripts
// written into temp dirs and a fake comparison executable.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeToolScript mimics the bcompare command line closely enough to drive
// every operation end to end. FAKE_BC_EXIT forces an exit code,
// FAKE_BC_STDERR is written to stderr, FAKE_BC_SLEEP delays the run, and
// FAKE_BC_ARGV (a file path) receives one received argument per line.
const fakeToolScript = `#!/bin/sh
if [ -n "$FAKE_BC_ARGV" ]; then
  for a in "$@"; do printf '%s\n' "$a"; done > "$FAKE_BC_ARGV"
fi
if [ -n "$FAKE_BC_SLEEP" ]; then sleep "$FAKE_BC_SLEEP"; fi
if [ -n "$FAKE_BC_STDERR" ]; then printf '%s\n' "$FAKE_BC_STDERR" >&2; fi

silent=0; ignore_case=0; ignore_ws=0; recurse=0; automerge=0
report=""; reportfile=""; sync=""; n=0
while [ $# -gt 0 ]; do
  case "$1" in
    -help) echo "Beyond Compare (fake) 5.0.0"; echo "usage: bcompare [options] left right"; exit 0 ;;
    -qc) ;;
    -silent) silent=1 ;;
    -ignorecase) ignore_case=1 ;;
    -ignoreunimportant) ignore_ws=1 ;;
    -recurse) recurse=1 ;;
    -automerge) automerge=1 ;;
    -filters=*) ;;
    -report) shift; report="$1" ;;
    -reportfile) shift; reportfile="$1" ;;
    -sync) sync="sync" ;;
    create:*|delete:*|update:*) sync="$sync $1" ;;
    *) n=$((n+1)); eval "p$n=\$1" ;;
  esac
  shift
done

write_report() {
  [ -z "$reportfile" ] && return 0
  [ "$1" -ge 100 ] && return 0
  case "$report" in
    html) printf '<html><body><p>%s vs %s: %s</p></body></html>\n' "$p1" "$p2" "$1" > "$reportfile" ;;
    *) printf '%s,%s,%s\n' "$p1" "$p2" "$1" > "$reportfile" ;;
  esac
}

if [ -n "$FAKE_BC_EXIT" ]; then
  echo "forced result $FAKE_BC_EXIT"
  write_report "$FAKE_BC_EXIT"
  exit "$FAKE_BC_EXIT"
fi

if [ ! -e "$p1" ] || [ ! -e "$p2" ]; then
  echo "cannot open input" >&2
  exit 104
fi

if [ -n "$sync" ]; then
  echo "$sync: $p1 $p2"
  if [ "$silent" = 0 ]; then
    case "$sync" in
      *"left<->right"*) cp -R "$p1/." "$p2/" && cp -R "$p2/." "$p1/" ;;
      *"left->right"*) cp -R "$p1/." "$p2/" ;;
      *"right->left"*) cp -R "$p2/." "$p1/" ;;
    esac
  fi
  exit 0
fi

if [ "$automerge" = 1 ]; then
  if [ "$n" -eq 4 ]; then base="$p3"; out="$p4"; else base=""; out="$p3"; fi
  if cmp -s "$p1" "$p2"; then cp "$p1" "$out"; exit 0; fi
  if [ -n "$base" ] && cmp -s "$base" "$p1"; then cp "$p2" "$out"; exit 0; fi
  if [ -n "$base" ] && cmp -s "$base" "$p2"; then cp "$p1" "$out"; exit 0; fi
  { echo "<<<<<<< left"; cat "$p1"; echo "======="; cat "$p2"; echo ">>>>>>> right"; } > "$out"
  exit 14
fi

norm() {
  if [ "$ignore_ws" = 1 ]; then sed 's/[[:space:]]*$//' "$1"; else cat "$1"; fi |
    if [ "$ignore_case" = 1 ]; then tr '[:upper:]' '[:lower:]'; else cat; fi
}

same_files() {
  if [ "$ignore_ws" = 0 ] && [ "$ignore_case" = 0 ]; then cmp -s "$1" "$2"; return; fi
  a=$(norm "$1"; echo x)
  b=$(norm "$2"; echo x)
  [ "$a" = "$b" ]
}

if [ -d "$p1" ]; then
  if [ "$recurse" = 1 ]; then out=$(diff -rq "$p1" "$p2" 2>&1); else out=$(diff -q "$p1" "$p2" 2>&1); fi
  if [ -z "$out" ]; then code=0; else printf '%s\n' "$out"; code=13; fi
else
  if same_files "$p1" "$p2"; then code=0; else echo "files differ"; code=13; fi
fi
write_report "$code"
exit "$code"
`

// SkipOnWindows skips tests that rely on POSIX shell scripts.
func SkipOnWindows(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on Windows")
	}
}

// WriteScript writes an executable shell script named name into a fresh
// temp dir and returns its path.
func WriteScript(t testing.TB, name, body string) string {
	t.Helper()
	SkipOnWindows(t)
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

// FakeTool installs the fake comparison executable and returns its path.
func FakeTool(t testing.TB) string {
	t.Helper()
	return WriteScript(t, "bcompare", fakeToolScript)
}

// WriteFile writes content to dir/name, creating parent dirs, and returns
// the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// StaticLocator always resolves to Path, or fails with Err.
type StaticLocator struct {
	Path  string
	Err   error
	Calls int
}

func (s *StaticLocator) Locate() (string, error) {
	s.Calls++
	return s.Path, s.Err
}
