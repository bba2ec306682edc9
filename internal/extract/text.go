package extract

import "strings"

// plainText decodes raw bytes as UTF-8, dropping invalid byte
// sequences instead of failing on them.
func plainText(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}
