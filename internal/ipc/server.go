package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// requestTimeout bounds how long a client may take to send its request
// and read the reply. Handlers themselves are not bounded.
const requestTimeout = 2 * time.Second

// Handler answers one command.
type Handler interface {
	Handle(context.Context, Request) Response
}

type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve accepts connections on listener and answers one request per
// connection. It returns nil once ctx is done or the listener is closed,
// after every in-flight connection has been answered.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	var conns sync.WaitGroup
	defer conns.Wait()

	for {
		conn, err := listener.Accept()
		switch {
		case err == nil:
		case errors.Is(err, net.ErrClosed), ctx.Err() != nil:
			return nil
		default:
			return fmt.Errorf("accept IPC connection: %w", err)
		}

		conns.Add(1)
		go func() {
			defer conns.Done()
			defer conn.Close()
			answer(ctx, newLineConn(conn), handler)
		}()
	}
}

// answer reads one request and writes the handler's reply. Framing errors
// are reported back to the client as a failed Response.
func answer(ctx context.Context, lc *lineConn, handler Handler) {
	var resp Response
	var req Request
	if err := lc.deadline(requestTimeout); err != nil {
		resp = Response{Error: fmt.Sprintf("set deadline: %v", err)}
	} else if err := lc.read("request", &req); err != nil {
		resp = Response{Error: err.Error()}
	} else {
		resp = handler.Handle(ctx, req)
		// The handler may have outlived the read deadline.
		_ = lc.deadline(requestTimeout)
	}
	_ = lc.write(resp)
}
