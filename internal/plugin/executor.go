package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ayusman/spatialtouch/internal/log"
)

var (
	// ErrTimeout is returned when a plugin does not finish in time.
	ErrTimeout = errors.New("plugin execution timeout")
	// ErrBadResponse is returned when a plugin's stdout is not a Response.
	ErrBadResponse = errors.New("invalid plugin response")
)

const (
	// waitDelay bounds how long output pipes held open by a killed plugin's
	// children can delay Execute.
	waitDelay = time.Second
	// maxQuoted caps plugin output quoted in errors.
	maxQuoted = 256
)

// Executor runs one plugin process per request.
type Executor struct {
	timeout time.Duration
}

// NewExecutor returns an Executor that kills plugins after timeoutMs.
func NewExecutor(timeoutMs int) *Executor {
	return &Executor{timeout: time.Duration(timeoutMs) * time.Millisecond}
}

// Execute starts p in its own directory, writes req to its stdin and decodes
// a Response from its stdout. A non-zero exit, a timeout and cancellation of
// ctx are errors; a Response with Success false is not.
func (e *Executor) Execute(ctx context.Context, p *Plugin, req *Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, p.Executable)
	cmd.Dir = p.Path
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	switch {
	case ctx.Err() != nil:
		return nil, fmt.Errorf("plugin %s: %w", p.Manifest.Name, ctx.Err())
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("plugin %s: %w after %s", p.Manifest.Name, ErrTimeout, e.timeout)
	case runErr != nil:
		if msg := quote(stderr.Bytes()); msg != "" {
			return nil, fmt.Errorf("plugin %s: %w: %s", p.Manifest.Name, runErr, msg)
		}
		return nil, fmt.Errorf("plugin %s: %w", p.Manifest.Name, runErr)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("plugin %s: %w: %q", p.Manifest.Name, ErrBadResponse, quote(stdout.Bytes()))
	}

	log.Debug("plugin executed",
		"plugin", p.Manifest.Name,
		"action", req.Action,
		"success", resp.Success,
		"elapsed", elapsed,
	)
	return &resp, nil
}

// quote trims plugin output for use in an error message.
func quote(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxQuoted {
		s = s[:maxQuoted] + "..."
	}
	return s
}
