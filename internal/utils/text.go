package utils

// TruncateRunes shortens text to limit characters (runes) and appends marker
// when anything was cut. Text within the limit is returned unchanged.
func TruncateRunes(text string, limit int, marker string) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + marker
}
