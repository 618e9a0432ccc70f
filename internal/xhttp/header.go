package xhttp

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"
)

const (
	XForwardedFor    = "X-Forwarded-For"
	XContentTypeOpts = "X-Content-Type-Options"
	XFrameOpts       = "X-Frame-Options"
	ReferrerPolicy   = "Referrer-Policy"
	XRateLimitReason = "X-RateLimit-Reason"
	XRequestID       = "X-Request-ID"
	CacheControl     = "Cache-Control"
)

const (
	ContentType        = "Content-Type"
	ContentEncoding    = "Content-Encoding"
	ContentLength      = "Content-Length"
	ContentDisposition = "Content-Disposition"
	AcceptEncoding     = "Accept-Encoding"
	Vary               = "Vary"
)

func SetHeaderRequestID(w http.ResponseWriter, requestID string) {
	w.Header().Set(XRequestID, requestID)
}

// SetHeaderNoStore keeps athlete data out of shared caches.
func SetHeaderNoStore(w http.ResponseWriter) {
	w.Header().Set(CacheControl, "no-store")
}

func SetHeaderContentTypeApplicationJSON(w http.ResponseWriter) {
	const applicationJSON = "application/json"
	w.Header().Set(ContentType, applicationJSON)
}

func SetHeaderContentTypeTextHTML(w http.ResponseWriter) {
	const textHTML = "text/html; charset=utf-8"
	w.Header().Set(ContentType, textHTML)
}

// SetHeaderAttachment marks the response as a file download.
func SetHeaderAttachment(w http.ResponseWriter, filename string) {
	w.Header().Set(ContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

// SetHeaderRetryAfter rounds up to whole seconds and never advertises less
// than one.
func SetHeaderRetryAfter(w http.ResponseWriter, retryAfter time.Duration) {
	const retryAfterHeader = "Retry-After"
	seconds := max(int(math.Ceil(retryAfter.Seconds())), 1)
	w.Header().Set(retryAfterHeader, strconv.Itoa(seconds))
}
