package api

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"fitcoach-client/internal/apierr"
)

// classifyTransportError maps a failure that produced no HTTP response
// into the error taxonomy. Order matters: timeouts are checked before
// the generic net error cases because a deadline surfaces as both.
func classifyTransportError(err error) *apierr.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.NewRequestTimeout(err)
	}
	if errors.Is(err, context.Canceled) {
		return apierr.NewUnknown("request canceled", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apierr.NewRequestTimeout(err)
	}

	// Name resolution and connect refusals mean the server side is
	// unreachable while the local network may be fine.
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return apierr.NewServerUnavailable(err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return apierr.NewServerUnavailable(err)
	}

	// Lost or absent connectivity.
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.ENETDOWN) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return apierr.NewNetworkUnavailable(err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return apierr.NewServerUnavailable(err)
		}
		return apierr.NewNetworkUnavailable(err)
	}

	return apierr.NewUnknown(err.Error(), err)
}
