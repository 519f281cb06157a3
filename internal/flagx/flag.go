// Package flagx filters command-line arguments so several independent flag
// sets (config file, server flags) can parse the same os.Args.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnvName is the environment variable consulted by ConfigFile when no
// config flag is present.
const ConfigEnvName = "CONFIG"

// FilterArgs keeps only the flags named in allowedFlags, together with their
// values, so a flag set can parse os.Args without tripping over flags that
// belong to another set.
//
// Both "-c conf.json" and "--config=conf.json" forms are recognised. A
// separate value is taken only when the next argument does not start with "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, hasValue := strings.Cut(arg, "="); hasValue && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)

		if next := i + 1; next < len(args) && !strings.HasPrefix(args[next], "-") {
			filtered = append(filtered, args[next])
			i = next
		}
	}

	return filtered
}

// ConfigFile returns the path of the JSON configuration file.
//
// The -c / -config flags win; when neither is given, the CONFIG environment
// variable is used. Only these flags are parsed so the caller can still run
// its own flag set over os.Args. An empty string means no file.
func ConfigFile() string {
	var path string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	if path == "" {
		path = os.Getenv(ConfigEnvName)
	}

	return path
}
