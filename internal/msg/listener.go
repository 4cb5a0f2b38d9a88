package msg

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/hungl6844/xcrab/internal/logger"
)

// Request is one control-socket message. The listener blocks on Reply before
// answering the connection, so each accepted connection carries its own reply
// channel and responses can never pair with the wrong request.
type Request struct {
	Action string
	Reply  chan error
}

// Listener accepts control connections on a unix stream socket. Protocol per
// connection: the client writes an action string and half-closes; the
// listener replies with a UTF-8 error message on failure or nothing on
// success, then closes.
type Listener struct {
	ln       net.Listener
	path     string
	requests chan Request
}

// Listen binds the control socket, unlinking a stale socket file first, and
// starts the accept loop.
func Listen(socketPath string) (*Listener, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to unlink stale socket: %w", err)
	}

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to bind control socket: %w", err)
	}

	l := &Listener{
		ln:       ln,
		path:     socketPath,
		requests: make(chan Request),
	}
	go l.acceptLoop()
	return l, nil
}

// Requests returns the channel the event loop drains.
func (l *Listener) Requests() <-chan Request {
	return l.requests
}

// Close stops the accept loop and removes the socket file.
func (l *Listener) Close() error {
	err := l.ln.Close()
	os.Remove(l.path)
	return err
}

func (l *Listener) acceptLoop() {
	log := logger.WithComponent("msg")
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				close(l.requests)
				return
			}
			log.Warn().Err(err).Msg("accept failed, skipping connection")
			continue
		}
		l.handle(conn)
	}
}

// handle serves one connection to completion. Connections are served
// sequentially; the loop goroutine is the bottleneck anyway.
func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()
	log := logger.WithComponent("msg")

	buf, err := io.ReadAll(conn)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read control message")
		return
	}

	reply := make(chan error, 1)
	l.requests <- Request{Action: string(buf), Reply: reply}
	if err := <-reply; err != nil {
		if _, werr := conn.Write([]byte(err.Error())); werr != nil {
			log.Warn().Err(werr).Msg("failed to write control reply")
		}
	}
}
