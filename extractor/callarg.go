package extractor

import (
	"regexp"
	"strings"
)

// CallArg recovers the first single-quoted argument of a named function call
// embedded in an inline handler such as onclick="fn('value', ...)".
type CallArg struct {
	fn string
	re *regexp.Regexp
}

// NewCallArg builds a matcher for fn('<value>'.
// When closed is true the quoted argument must be followed directly by ")",
// i.e. it has to be the only argument.
func NewCallArg(fn string, closed bool) *CallArg {
	pattern := regexp.QuoteMeta(fn) + `\('([^']+)'`
	if closed {
		pattern += `\)`
	}
	return &CallArg{fn: fn, re: regexp.MustCompile(pattern)}
}

// Extract returns the argument and true when handler calls the function with
// a non-empty single-quoted first argument.
func (c *CallArg) Extract(handler string) (string, bool) {
	if !strings.Contains(handler, c.fn+"(") {
		return "", false
	}
	m := c.re.FindStringSubmatch(handler)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var (
	directDownloadArg = NewCallArg("directDownload", true)
	watchOnlineArg    = NewCallArg("openWatchOnlineWithQuality", false)
)
