package logging

import (
	"regexp"
	"strings"
)

const (
	// MaxQueryLogLength is the maximum length of a query to log
	MaxQueryLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Matches password=xxx, pwd=xxx, pass=xxx until the next delimiter.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches user:pass@host credentials of a connection URL.
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)

	// Matches a password flag of the re-materialization tool followed by its value.
	passwordFlagPattern = regexp.MustCompile(`(\s-p|\s--password)(\s+|=)\S+`)
)

// passwordFlags are the command-line flags whose next argument is a secret.
var passwordFlags = map[string]bool{"-p": true, "--password": true}

// SanitizeConnectionString removes sensitive data from connection strings.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeError sanitizes error messages that might contain credentials, such as
// driver errors echoing a DSN or tool failures echoing their command line.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := SanitizeConnectionString(err.Error())
	return passwordFlagPattern.ReplaceAllString(sanitized, "${1}${2}"+RedactedText)
}

// SanitizeCommandArgs returns a copy of a command line with secret flag values redacted.
func SanitizeCommandArgs(args []string) []string {
	out := make([]string, len(args))
	redactNext := false
	for i, arg := range args {
		switch {
		case redactNext:
			out[i] = RedactedText
			redactNext = false
		case passwordFlags[arg]:
			out[i] = arg
			redactNext = true
		default:
			if name, _, ok := strings.Cut(arg, "="); ok && passwordFlags[name] {
				out[i] = name + "=" + RedactedText
				continue
			}
			out[i] = SanitizeConnectionString(arg)
		}
	}
	return out
}

// SanitizeOutput redacts the given secret values and any credential pattern from the
// output of an external command before it reaches a log line or an error.
func SanitizeOutput(output string, secrets ...string) string {
	for _, secret := range secrets {
		if secret != "" {
			output = strings.ReplaceAll(output, secret, RedactedText)
		}
	}
	output = SanitizeConnectionString(output)
	return passwordFlagPattern.ReplaceAllString(output, "${1}${2}"+RedactedText)
}

// SanitizeQuery truncates and sanitizes a SQL query for logging.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}
	return passwordPattern.ReplaceAllString(TruncateString(query, MaxQueryLogLength), "${1}="+RedactedText)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
