package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds one engine invocation's wall-clock time.
const DefaultTimeout = 30 * time.Second

// Runner spawns the real engine executable for each batch.
type Runner struct {
	// Exe is the engine executable path.
	Exe string

	// Dir is the subprocess working directory (the repo root; the engine
	// resolves its own data files relative to it).
	Dir string

	// Timeout bounds each Submit call; DefaultTimeout when zero.
	Timeout time.Duration

	// Logger receives per-batch debug records. Nil discards them.
	Logger *slog.Logger
}

// Submit runs one engine invocation for the whole batch.
//
// A timeout, non-zero exit, undecodable stdout or a result count that
// does not match the request discards the entire batch: the engine is
// deterministic, so a broken batch is a fixture-level failure, not
// something to retry or consume partially.
func (r *Runner) Submit(ctx context.Context, mode string, cases []Case) ([]json.RawMessage, error) {
	if len(cases) == 0 {
		return nil, nil
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	batchID := uuid.NewString()
	start := time.Now()

	cmd := exec.CommandContext(ctx, r.Exe, mode)
	cmd.Dir = r.Dir
	cmd.Stdin = bytes.NewReader(EncodeBatch(cases))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("engine batch %s (%s, %d cases) timed out after %s", batchID, mode, len(cases), timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("engine batch %s (%s) failed: %w%s", batchID, mode, err, stderrTail(stderr.String()))
	}

	var results []json.RawMessage
	if err := json.Unmarshal(stdout.Bytes(), &results); err != nil {
		return nil, fmt.Errorf("engine batch %s (%s): output is not a JSON array: %w", batchID, mode, err)
	}
	if len(results) != len(cases) {
		return nil, fmt.Errorf("engine batch %s (%s): got %d results for %d cases", batchID, mode, len(results), len(cases))
	}

	if r.Logger != nil {
		r.Logger.Debug("engine batch complete",
			"batch", batchID,
			"mode", mode,
			"cases", len(cases),
			"duration", time.Since(start))
	}
	return results, nil
}

func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return ": " + strings.Join(lines, " / ")
}

// Fake is a canned Engine for testing without the external executable.
// Responses are consumed in Submit order; every call is recorded.
type Fake struct {
	Responses []FakeResponse
	Calls     []FakeCall
}

// FakeCall records one Submit invocation.
type FakeCall struct {
	Mode  string
	Cases []Case
}

// FakeResponse is one queued Submit result.
type FakeResponse struct {
	Results []json.RawMessage
	Err     error
}

// Submit records the call and pops the next queued response.
func (f *Fake) Submit(_ context.Context, mode string, cases []Case) ([]json.RawMessage, error) {
	f.Calls = append(f.Calls, FakeCall{Mode: mode, Cases: cases})
	if len(f.Responses) == 0 {
		return nil, errors.New("fake engine: no response queued")
	}
	resp := f.Responses[0]
	f.Responses = f.Responses[1:]
	return resp.Results, resp.Err
}

// Queue appends a successful response built from JSON literals, one per
// case.
func (f *Fake) Queue(results ...string) {
	raw := make([]json.RawMessage, len(results))
	for i, r := range results {
		raw[i] = json.RawMessage(r)
	}
	f.Responses = append(f.Responses, FakeResponse{Results: raw})
}

// QueueErr appends a failing response.
func (f *Fake) QueueErr(err error) {
	f.Responses = append(f.Responses, FakeResponse{Err: err})
}
