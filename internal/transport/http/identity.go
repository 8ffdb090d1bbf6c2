package http

import "net/http"

// userIDHeader carries the authenticated caller's user ID. Authentication
// itself happens upstream; this service trusts the header and only enforces
// ownership rules against it.
const userIDHeader = "X-User-Id"

func callerID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}
