package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rbright/recite/internal/cli"
	"github.com/rbright/recite/internal/ipc"
)

const forwardTimeout = 220 * time.Millisecond

func forwardRequest(parsed cli.Parsed) ipc.Request {
	req := ipc.Request{Command: string(parsed.Command)}
	if parsed.Command == cli.CommandText {
		req.Text = parsed.Payload()
	}
	return req
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: ipc.CommandStatus})
	if !handled {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.State == "" {
		resp.State = "idle"
	}
	fmt.Fprintln(r.Stdout, resp.State)
	if resp.Message != "" && resp.Message != "status" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, req ipc.Request) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active recite session\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// tryForward sends req to a running owner. handled is false when no owner exists.
func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if noOwner(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

// noOwner extends ipc.IsNoOwner with dial errors that only carry the text.
func noOwner(err error) bool {
	if err == nil {
		return false
	}
	return ipc.IsNoOwner(err) || strings.Contains(err.Error(), "no such file or directory")
}
