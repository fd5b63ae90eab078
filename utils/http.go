// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared client for outbound calls (auth service,
// profile sync). Generous timeout for slow upstream media fetches.
var HTTPClient = &http.Client{
	Timeout: 300 * time.Second,
}