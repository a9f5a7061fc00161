package llm

import "regexp"

const redacted = "[REDACTED]"

var secretPatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`sk-(?:ant-|proj-)?[A-Za-z0-9_\-]{8,}`), redacted},
	{regexp.MustCompile(`gsk_[A-Za-z0-9]{8,}`), redacted},
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{20,}`), redacted},
	{regexp.MustCompile(`(?i)\b(bearer)\s+[A-Za-z0-9._\-]+`), "$1 " + redacted},
	{regexp.MustCompile(`(?i)\b(api[_-]?key|key|token|x-api-key|x-goog-api-key)(["']?\s*[=:]\s*["']?)[^&\s"',]+`), "${1}${2}" + redacted},
}

// Sanitize removes anything that looks like a credential from s
func Sanitize(s string) string {
	for _, p := range secretPatterns {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return s
}
