package timeout

import (
	"net/http"
	"time"
)

// Timeout aborts requests that run longer than the given number of seconds.
func Timeout(seconds int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, time.Duration(seconds)*time.Second, "request timed out")
	}
}
