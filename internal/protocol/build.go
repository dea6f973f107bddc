package protocol

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BuildSpec describes how to (re)build the engine executable.
type BuildSpec struct {
	// Exe is the executable the build is expected to produce.
	Exe string

	// Command is the build argv, run in Dir.
	Command []string

	// Dir is the build working directory (the repo root).
	Dir string

	// SourceDir holds the engine sources; used for the staleness check.
	SourceDir string

	// SourceExt filters staleness-relevant files (e.g. ".kk"). Empty
	// considers every file under SourceDir.
	SourceExt string

	// Output receives build tool output. Nil discards it.
	Output io.Writer
}

// Build rebuilds the engine unless the executable is already newer than
// every source file. Optimized engine builds are slow, so staleness is
// checked first; if the mtimes cannot be read the build runs anyway.
func Build(ctx context.Context, spec BuildSpec, logger *slog.Logger) error {
	if len(spec.Command) == 0 {
		return fmt.Errorf("build engine: no build command configured")
	}

	if fresh, err := isFresh(spec); err == nil && fresh {
		if logger != nil {
			logger.Debug("engine up to date", "exe", spec.Exe)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(spec.Exe), 0755); err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	if logger != nil {
		logger.Info("building engine", "exe", spec.Exe, "command", strings.Join(spec.Command, " "))
	}
	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Dir
	cmd.Stdout = spec.Output
	cmd.Stderr = spec.Output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	if err := os.Chmod(spec.Exe, 0755); err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	return nil
}

func isFresh(spec BuildSpec) (bool, error) {
	if spec.SourceDir == "" {
		return false, nil
	}
	exeInfo, err := os.Stat(spec.Exe)
	if err != nil {
		return false, err
	}
	var newest time.Time
	err = filepath.WalkDir(spec.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || (spec.SourceExt != "" && !strings.HasSuffix(d.Name(), spec.SourceExt)) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return !exeInfo.ModTime().Before(newest), nil
}
