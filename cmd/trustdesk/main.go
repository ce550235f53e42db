package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"trustdesk-cli/internal/cli"
	"trustdesk-cli/internal/entities"
)

// splitDirectRef parses "<entity>:<id>", e.g. "users:12" or "c3:4".
func splitDirectRef(s string) (entity string, id string, ok bool) {
	name, rawID, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found || name == "" {
		return "", "", false
	}
	if n, err := strconv.ParseInt(rawID, 10, 64); err != nil || n < 1 {
		return "", "", false
	}
	e, known := entities.Lookup(name)
	if !known {
		return "", "", false
	}
	return e.Name, rawID, true
}

// rewriteDirectLookupArgs turns `trustdesk users:12` into
// `trustdesk users show 12`. Cobra takes the first positional token as the
// subcommand, so argv is rewritten before parsing. Persistent flags may come
// first.
func rewriteDirectLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--api-url":   true,
		"--profile":   true,
		"--token":     true,
		"--format":    true,
		"--log-level": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			return argv
		}
		if strings.HasPrefix(a, "-") {
			// --flag=value and bool flags (--pretty) take no extra token.
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		entity, id, ok := splitDirectRef(a)
		if !ok {
			return argv
		}
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, entity, "show", id)
		out = append(out, argv[i+1:]...)
		return out
	}
	return argv
}

func main() {
	os.Args = rewriteDirectLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		stop()
		os.Exit(1)
	}
}
