package executor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Runtime describes how one language is executed: the temp-file extension,
// the interpreter argv (the source path is appended), and an optional wrapper
// applied to the source before it is written. The wrapper must contain a
// single %s placeholder.
type Runtime struct {
	Extension string   `yaml:"extension"`
	Command   []string `yaml:"command"`
	Wrapper   string   `yaml:"wrapper"`
}

// jsWrapper turns an uncaught exception into a "Runtime Error: ..." line on
// stdout and a clean exit, so script errors render in the output pane instead
// of failing the request. The subprocess's stdout is the only output sink;
// console methods are left alone.
const jsWrapper = `try {
%s
} catch (err) {
    process.stdout.write('Runtime Error: ' + err.message + '\n');
}
`

// DefaultRuntimes returns the built-in language profiles.
func DefaultRuntimes() map[string]Runtime {
	return map[string]Runtime{
		"python": {
			Extension: "py",
			Command:   []string{"python3"},
		},
		"javascript": {
			Extension: "js",
			Command:   []string{"node"},
			Wrapper:   jsWrapper,
		},
	}
}

// LoadRuntimes reads language profiles from a YAML file and merges them over
// the defaults. Adding a runtime is one profile entry; the normalizer needs
// no changes.
func LoadRuntimes(path string) (map[string]Runtime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading runtimes %s: %w", path, err)
	}

	var overrides map[string]Runtime
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing runtimes %s: %w", path, err)
	}

	runtimes := DefaultRuntimes()
	for name, rt := range overrides {
		if len(rt.Command) == 0 {
			return nil, fmt.Errorf("runtime %s: command is required", name)
		}
		runtimes[name] = rt
	}
	return runtimes, nil
}
