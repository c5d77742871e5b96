package bcompare

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// candidates lists absolute install paths and plain command names per GOOS,
// in search order.
type candidates struct {
	paths    []string
	commands []string
}

var installTable = map[string]candidates{
	"darwin": {
		paths: []string{
			"/Applications/Beyond Compare.app/Contents/MacOS/bcomp",
			"/usr/local/bin/bcomp",
			"/opt/homebrew/bin/bcomp",
		},
		commands: []string{"bcomp", "bcompare"},
	},
	"windows": {
		paths: []string{
			`C:\Program Files\Beyond Compare 5\BCompare.exe`,
			`C:\Program Files\Beyond Compare 4\BCompare.exe`,
			`C:\Program Files (x86)\Beyond Compare 5\BCompare.exe`,
			`C:\Program Files (x86)\Beyond Compare 4\BCompare.exe`,
		},
		commands: []string{"BCompare.exe", "BComp.exe"},
	},
	"linux": {
		paths: []string{
			"/usr/bin/bcompare",
			"/usr/local/bin/bcompare",
			"/opt/beyondcompare/bin/bcompare",
		},
		commands: []string{"bcompare", "bcomp"},
	},
}

func candidatesFor(goos string) candidates {
	if c, ok := installTable[goos]; ok {
		return c
	}
	return installTable["linux"]
}

// Locator resolves the comparison executable. It never runs the tool.
// A successful lookup is cached for the life of the Locator; a miss is not,
// so an installation made after startup is found on the next call.
type Locator struct {
	override string
	goos     string
	stat     func(string) (os.FileInfo, error)
	lookPath func(string) (string, error)

	cached atomic.Pointer[string]
	group  singleflight.Group
}

// NewLocator creates a Locator for the running platform. A non-empty
// override (path or command name) replaces the built-in search.
func NewLocator(override string) *Locator {
	return &Locator{
		override: strings.TrimSpace(override),
		goos:     runtime.GOOS,
		stat:     os.Stat,
		lookPath: exec.LookPath,
	}
}

// Locate returns the executable path. Concurrent first calls share a single
// lookup; recomputing after a race is harmless because the lookup is pure.
func (l *Locator) Locate() (string, error) {
	if p := l.cached.Load(); p != nil {
		return *p, nil
	}
	v, err, _ := l.group.Do("locate", func() (any, error) {
		return l.search()
	})
	if err != nil {
		return "", err
	}
	path := v.(string)
	l.cached.Store(&path)
	return path, nil
}

func (l *Locator) search() (string, error) {
	if l.override != "" {
		if p, ok := l.resolve(l.override); ok {
			return p, nil
		}
		return "", fmt.Errorf("%w: configured executable %q is not usable", domain.ErrToolNotFound, l.override)
	}

	c := candidatesFor(l.goos)
	for _, p := range c.paths {
		if l.isFile(p) {
			return p, nil
		}
	}
	for _, name := range c.commands {
		if p, err := l.lookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: searched %s and PATH for %s; install Beyond Compare or set BC_MCP_EXECUTABLE",
		domain.ErrToolNotFound, strings.Join(c.paths, ", "), strings.Join(c.commands, ", "))
}

func (l *Locator) resolve(nameOrPath string) (string, bool) {
	if strings.ContainsAny(nameOrPath, `/\`) {
		return nameOrPath, l.isFile(nameOrPath)
	}
	p, err := l.lookPath(nameOrPath)
	return p, err == nil
}

func (l *Locator) isFile(path string) bool {
	fi, err := l.stat(path)
	return err == nil && !fi.IsDir()
}
