package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"timeline-cli/internal/cli"
)

func isProjectRef(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "@") && len(s) > len("@")
}

// rewriteDirectProjectLookupArgs turns `timeline @<slug>` into
// `timeline projects show <slug>`. Cobra treats the first non-flag token as a
// subcommand, so argv is rewritten before parsing. Persistent flags may come
// first, so the first positional token is searched for rather than argv[1].
func rewriteDirectProjectLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unrecognized flags are skipped without skipping a value, so a slug is
	// never consumed as one.
	valueFlags := map[string]bool{
		"--config":    true,
		"--projects":  true,
		"--format":    true,
		"--log-level": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "projects", "show", strings.TrimPrefix(strings.TrimSpace(argv[i]), "@"))
		out = append(out, argv[i+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isProjectRef(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") {
				continue
			}
			if boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
				continue
			}
			continue
		}

		if isProjectRef(a) {
			return rewrite(i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectProjectLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
