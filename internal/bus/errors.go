package bus

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/segmentio/kafka-go"
)

// IsRetriable reports whether a publish error is worth another attempt.
// Classification is by error kind: broker errors carry their own
// Temporary flag, transport timeouts and connection drops are transient,
// everything else (auth failures, malformed requests, cancellation) is
// permanent.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var kerr kafka.Error
	if errors.As(err, &kerr) {
		return kerr.Temporary() || kerr.Timeout()
	}

	// A batch write surfaces per-message errors as one slice.
	var werrs kafka.WriteErrors
	if errors.As(err, &werrs) {
		for _, werr := range werrs {
			if IsRetriable(werr) {
				return true
			}
		}
		return false
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	return false
}
