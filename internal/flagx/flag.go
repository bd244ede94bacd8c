// Package flagx lets independent loaders pick their own flags out of os.Args
// without tripping over flags that belong to someone else.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags named in allowedFlags, together with their
// values. Names may be given with one or two dashes and as "-f value" or
// "-f=value"; a following token that starts with "-" is never consumed as a
// value. Scanning stops at the "--" terminator.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[flagName(f)] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		if _, ok := allowed[flagName(name)]; !ok {
			continue
		}
		filtered = append(filtered, arg)

		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

func flagName(s string) string {
	return strings.TrimLeft(s, "-")
}

// ConfigFileFlag returns the JSON config path given with -c or -config, or ""
// when neither is present.
func ConfigFileFlag() string {
	var path string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(args)

	return path
}
