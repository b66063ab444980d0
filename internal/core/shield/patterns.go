package shield

import (
	"net/http"
	"regexp"
	"strings"
)

// maxScanBytes bounds how much of the request target the pattern checks
// inspect, keeping cost independent of attacker-controlled URL length.
const maxScanBytes = 2048

// maxContentLength is the declared body size above which a request is
// treated as suspicious.
const maxContentLength = 1_000_000

// maxQueryParams is the query-parameter count above which a request is
// treated as suspicious.
const maxQueryParams = 20

var sqlInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)union.+select`),
	regexp.MustCompile(`(?i)insert.+into`),
	regexp.MustCompile(`(?i)delete.+from`),
}

var injectionTokens = []string{
	"exec(", "eval(", "function(", "alert(",
	"<script", "javascript:",
	"../", `..\`,
}

// Suspicious is a stateless heuristic screen over a single request. It is
// not a security boundary: false positives and false negatives are both
// expected, and a verdict only feeds the suspicion score. The checks run in
// order and any single match decides. Total over well-formed requests.
func Suspicious(r *http.Request) bool {
	// Scripted clients commonly omit negotiation headers or send the bare
	// wildcard; real browsers do neither.
	accept := r.Header.Get("Accept")
	if r.UserAgent() == "" || accept == "" || accept == "*/*" {
		return true
	}

	if r.ContentLength > maxContentLength {
		return true
	}

	if r.Method != http.MethodGet && r.Header.Get("Content-Type") == "" {
		return true
	}

	if len(r.URL.Query()) > maxQueryParams {
		return true
	}

	target := r.URL.RequestURI()
	if len(target) > maxScanBytes {
		target = target[:maxScanBytes]
	}
	target = strings.ToLower(target)

	for _, token := range injectionTokens {
		if strings.Contains(target, token) {
			return true
		}
	}
	for _, re := range sqlInjectionPatterns {
		if re.MatchString(target) {
			return true
		}
	}

	return false
}
