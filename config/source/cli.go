package source

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// CLISource reads dotted long flags into the configuration tree:
//
//	--loop.frameRate=30 --server.addr :9090
//	  -> {loop: {frameRate: "30"}, server: {addr: ":9090"}}
//
// Flags are discovered from the arguments themselves, so no registration is
// needed. Arguments that are not flags and empty values are ignored.
type CLISource struct {
	// Args defaults to os.Args[1:].
	Args []string
}

func (c *CLISource) Name() string { return "cli" }

func (c *CLISource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	args := c.Args
	if args == nil && len(os.Args) > 1 {
		args = os.Args[1:]
	}

	fs := pflag.NewFlagSet("asyncdep", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	args = longOnly(args)
	for _, arg := range args {
		name := flagName(arg)
		if name == "" || fs.Lookup(name) != nil {
			continue
		}
		fs.String(name, "", "config value for "+name)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	out := map[string]any{}
	fs.Visit(func(f *pflag.Flag) {
		if v := f.Value.String(); v != "" {
			setPath(out, strings.Split(f.Name, "."), v)
		}
	})
	return out, nil
}

// longOnly drops single-dash arguments, which never carry config values.
func longOnly(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) > 1 && a[0] == '-' && a[1] != '-' {
			continue
		}
		out = append(out, a)
	}
	return out
}

// flagName returns the name of a --long or --long=value argument.
func flagName(arg string) string {
	if !strings.HasPrefix(arg, "--") || arg == "--" {
		return ""
	}
	name := strings.TrimPrefix(arg, "--")
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	return name
}
