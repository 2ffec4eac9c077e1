package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// maxMessageBytes bounds one JSON line in either direction.
const maxMessageBytes = 64 << 10

var errMessageTooLarge = errors.New("message exceeds 64 KiB")

// lineConn frames JSON values as single lines on a stream connection.
type lineConn struct {
	conn net.Conn
	in   *bufio.Reader
}

func newLineConn(conn net.Conn) *lineConn {
	return &lineConn{conn: conn, in: bufio.NewReader(io.LimitReader(conn, maxMessageBytes+1))}
}

func (l *lineConn) deadline(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return l.conn.SetDeadline(time.Now().Add(d))
}

// write encodes v followed by a newline.
func (l *lineConn) write(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = l.conn.Write(append(payload, '\n'))
	return err
}

// read decodes the next line into v. what names the value in errors.
func (l *lineConn) read(what string, v any) error {
	line, err := l.in.ReadBytes('\n')
	if len(line) > maxMessageBytes {
		return fmt.Errorf("read %s: %w", what, errMessageTooLarge)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}
