package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per ErrorKind. A *Failure matches its kind's sentinel
// under errors.Is.
var (
	ErrPathNotFound      = errors.New("path not found")
	ErrToolNotFound      = errors.New("comparison executable not found")
	ErrInvalidOption     = errors.New("invalid option")
	ErrProcessTimeout    = errors.New("process timed out")
	ErrProcessSpawnError = errors.New("process spawn error")
	ErrToolReportedError = errors.New("tool reported error")
)

var kindSentinels = map[ErrorKind]error{
	ErrKindPathNotFound:      ErrPathNotFound,
	ErrKindToolNotFound:      ErrToolNotFound,
	ErrKindInvalidOption:     ErrInvalidOption,
	ErrKindProcessTimeout:    ErrProcessTimeout,
	ErrKindProcessSpawnError: ErrProcessSpawnError,
	ErrKindToolReportedError: ErrToolReportedError,
}

// Failure describes why an operation could not produce a usable outcome.
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	// Path is the offending filesystem path, when there is one.
	Path     string `json:"path,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	// Artifact is a file left behind for diagnosis.
	Artifact string `json:"artifact,omitempty"`

	cause error
}

func (f *Failure) Error() string {
	msg := string(f.Kind) + ": " + f.Message
	if f.Path != "" {
		msg += fmt.Sprintf(" (path %q)", f.Path)
	}
	if f.Kind == ErrKindToolReportedError {
		msg += fmt.Sprintf(" (exit code %d)", f.ExitCode)
	}
	return msg
}

func (f *Failure) Is(target error) bool {
	return kindSentinels[f.Kind] == target
}

func (f *Failure) Unwrap() error {
	return f.cause
}

// WithCause records the underlying error for errors.Unwrap.
func (f *Failure) WithCause(err error) *Failure {
	f.cause = err
	return f
}

// PathNotFound builds a path_not_found failure for the given role ("left", ...).
func PathNotFound(role, path string) *Failure {
	return &Failure{
		Kind:    ErrKindPathNotFound,
		Message: fmt.Sprintf("%s path does not exist", role),
		Path:    path,
	}
}

// InvalidOption builds an invalid_option failure.
func InvalidOption(format string, args ...any) *Failure {
	return &Failure{Kind: ErrKindInvalidOption, Message: fmt.Sprintf(format, args...)}
}

// AsFailure extracts a *Failure from err, or nil.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return nil
}
