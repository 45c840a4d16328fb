package utils

import (
	"regexp"
	"strings"
)

var (
	tagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptPattern = regexp.MustCompile(`(?is)<script.*?(</script>|$)`)
)

// SanitizeText 自由文本入库前去掉标记和脚本，只留纯文本
func SanitizeText(s string) string {
	s = scriptPattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
