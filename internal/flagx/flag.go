// Package flagx lets several flag sets share one argument list: each
// consumer keeps only the flags it owns before parsing.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns the part of args that sets one of the flags in owned,
// keeping order. Flags are matched by name, so "-db", "--db" and "-db=x"
// all belong to "-db". A flag given without "=" takes the next argument as
// its value unless that argument is itself a flag; negative numbers count
// as values. Parsing stops at "--".
func FilterArgs(args []string, owned []string) []string {
	names := make(map[string]bool, len(owned))
	for _, f := range owned {
		names[strings.TrimLeft(f, "-")] = true
	}

	// never nil, callers pass it straight to flag.Parse
	kept := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			break
		}
		name, inline, ok := splitFlag(args[i])
		if !ok || !names[name] {
			continue
		}
		kept = append(kept, args[i])
		if !inline && i+1 < len(args) && !isFlag(args[i+1]) {
			i++
			kept = append(kept, args[i])
		}
	}

	return kept
}

// splitFlag returns the flag name in arg and whether arg carries its value
// after "=". ok is false when arg is not a flag.
func splitFlag(arg string) (name string, inline bool, ok bool) {
	if !isFlag(arg) {
		return "", false, false
	}
	name = strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true, true
	}
	return name, false, true
}

func isFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return false
	}
	c := arg[1]
	return !(c >= '0' && c <= '9') && c != '.'
}

// JsonConfigPath returns the value of -c or -config found in args, or an
// empty string when neither is present. The last occurrence wins.
func JsonConfigPath(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}
