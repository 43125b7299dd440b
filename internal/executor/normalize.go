package executor

import "strings"

// Normalize maps the divergent success and error signaling of the runtimes
// into one output string, trimmed of surrounding whitespace:
//
//   - non-zero exit: the stderr text, or the process error message when
//     stderr is empty
//   - zero exit with non-empty stderr: stdout then stderr concatenated (some
//     runtimes emit warnings on stderr even on success)
//   - zero exit otherwise: stdout
//
// Timeouts never reach here; the runner reports them as ErrTimeout with no
// output body.
func Normalize(res *RawResult) string {
	var out string
	switch {
	case res.ExitCode != 0:
		out = res.Stderr
		if out == "" {
			out = res.ProcErr
		}
	case res.Stderr != "":
		out = res.Stdout + res.Stderr
	default:
		out = res.Stdout
	}
	return strings.TrimSpace(out)
}
