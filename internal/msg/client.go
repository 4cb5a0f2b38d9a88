package msg

import (
	"fmt"
	"io"
	"net"
)

// Send delivers one action string to the window manager and waits for the
// verdict: an empty reply means success, anything else is the error text.
func Send(socketPath, action string) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to %s (is xcrab running?): %w", socketPath, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(action)); err != nil {
		return fmt.Errorf("failed to send action: %w", err)
	}
	if err := conn.(*net.UnixConn).CloseWrite(); err != nil {
		return fmt.Errorf("failed to half-close: %w", err)
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return fmt.Errorf("failed to read reply: %w", err)
	}
	if len(reply) > 0 {
		return fmt.Errorf("%s", reply)
	}
	return nil
}
