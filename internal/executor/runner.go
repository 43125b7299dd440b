package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the hard per-job deadline. It is fixed at construction
// time and never settable by an individual request.
const DefaultTimeout = 5 * time.Second

// ErrTimeout reports that the interpreter ran past the job deadline and was
// forcibly terminated.
var ErrTimeout = errors.New("execution timed out")

// ErrUnknownLanguage reports a run request for a language with no runtime
// profile.
var ErrUnknownLanguage = errors.New("unsupported language")

// RawResult is the unshaped outcome of one interpreter run. Normalize turns
// it into the single-output contract.
type RawResult struct {
	Stdout   string
	Stderr   string
	ExitCode int

	// ProcErr is the process-level error message, used when the interpreter
	// exited non-zero without writing anything to stderr.
	ProcErr string
}

// Runner executes untrusted source in short-lived interpreter subprocesses.
// Each job owns an exclusively named temp artifact for its exclusive
// duration, so concurrent unrelated jobs never collide.
type Runner struct {
	runtimes map[string]Runtime
	timeout  time.Duration
	dir      string
}

// NewRunner creates a runner over the given runtime profiles. A non-positive
// timeout falls back to DefaultTimeout; artifacts go to the system temp dir.
func NewRunner(runtimes map[string]Runtime, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		runtimes: runtimes,
		timeout:  timeout,
		dir:      os.TempDir(),
	}
}

// SetDir overrides the directory for temporary artifacts.
func (r *Runner) SetDir(dir string) { r.dir = dir }

// Languages reports the configured language names.
func (r *Runner) Languages() []string {
	names := make([]string, 0, len(r.runtimes))
	for name := range r.runtimes {
		names = append(names, name)
	}
	return names
}

// Supports reports whether a runtime profile exists for the language.
func (r *Runner) Supports(language string) bool {
	_, ok := r.runtimes[language]
	return ok
}

// Run writes the source to a uniquely named temp file, executes the language's
// interpreter against it, and returns the captured channels. The artifact is
// deleted before Run returns on every path; deletion failure is logged, never
// escalated. A job past its deadline is killed and reported as ErrTimeout.
func (r *Runner) Run(ctx context.Context, source, language string) (*RawResult, error) {
	rt, ok := r.runtimes[language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
	}

	if rt.Wrapper != "" {
		source = fmt.Sprintf(rt.Wrapper, source)
	}

	token := uuid.New().String()
	path := filepath.Join(r.dir, fmt.Sprintf("%s.%s", token, rt.Extension))
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("writing source file: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("removing temp artifact %s: %v", path, err)
		}
	}()

	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(append([]string{}, rt.Command[1:]...), path)
	cmd := exec.CommandContext(execCtx, rt.Command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return nil, ErrTimeout
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &RawResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// Spawn failure, e.g. the interpreter is not installed.
			return nil, fmt.Errorf("starting %s: %w", rt.Command[0], err)
		}
		res.ExitCode = exitErr.ExitCode()
		res.ProcErr = exitErr.Error()
	}
	return res, nil
}
