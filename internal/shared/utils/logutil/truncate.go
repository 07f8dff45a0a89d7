package logutil

// TruncateForLog caps s at maxLen bytes, marking a cut with "...".
// Used for upstream payloads echoed into errors and log lines.
func TruncateForLog(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
