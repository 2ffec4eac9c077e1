package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"
)

// Send dials the owner on path, writes req and waits for its reply.
// timeout bounds the dial and the whole exchange.
func Send(ctx context.Context, path string, req Request, timeout time.Duration) (Response, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	lc := newLineConn(conn)
	if err := lc.deadline(timeout); err != nil {
		return Response{}, fmt.Errorf("set deadline: %w", err)
	}
	if err := lc.write(req); err != nil {
		return Response{}, fmt.Errorf("send %s request: %w", req.Command, err)
	}

	var resp Response
	if err := lc.read("response", &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Probe sends a status request. It is false with no error when nothing owns path.
func Probe(ctx context.Context, path string, timeout time.Duration) (bool, error) {
	switch _, err := Send(ctx, path, Request{Command: CommandStatus}, timeout); {
	case err == nil:
		return true, nil
	case IsNoOwner(err):
		return false, nil
	default:
		return false, fmt.Errorf("probe socket: %w", err)
	}
}

// IsNoOwner reports dial failures that mean no process owns the socket:
// the file is gone, or it is left over and nobody accepts on it.
func IsNoOwner(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED)
}
