package common

import "unicode/utf8"

// TruncateName 按字符截断名字，超长时以省略号结尾
func TruncateName(name string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(name) <= maxLen {
		return name
	}
	runes := []rune(name)
	return string(runes[:maxLen-1]) + "…"
}
