// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// DefaultRPCTimeout bounds every outbound JSON-RPC call.
const DefaultRPCTimeout = 10 * time.Second

func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}
