package allowlist

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ResolveRevision resolves rev to a full object id via git rev-parse,
// without touching the working copy. The error carries git's stderr so
// "unknown revision" surfaces usefully.
func ResolveRevision(ctx context.Context, repoRoot, rev string) (string, error) {
	out, err := runGit(ctx, repoRoot, "rev-parse", "--verify", rev)
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed for %q: %w", rev, err)
	}
	resolved := strings.TrimSpace(out)
	if resolved == "" {
		return "", fmt.Errorf("git rev-parse returned empty output for %q", rev)
	}
	return resolved, nil
}

// LoadFromGit retrieves and validates the allowlist document as of rev.
// relpath is the document's path relative to the repository root.
//
// Callers fall back to the current document when this fails (fresh clone,
// shallow fetch); see report.Diff.
func LoadFromGit(ctx context.Context, repoRoot, rev, relpath string) (*Document, error) {
	resolved, err := ResolveRevision(ctx, repoRoot, rev)
	if err != nil {
		return nil, err
	}
	out, err := runGit(ctx, repoRoot, "show", resolved+":"+relpath)
	if err != nil {
		return nil, fmt.Errorf("git show failed for %s:%s: %w", resolved, relpath, err)
	}
	return Parse([]byte(out))
}

func runGit(ctx context.Context, repoRoot string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}
