package util

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrInvalidFileName = errors.New("invalid file name")

const maxFileNameRunes = 200

// SanitizeFileName flattens path separators, drops control characters and
// rejects traversal. Long names keep their extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(name))
	if s == "" {
		return "", ErrInvalidFileName
	}
	if utf8.RuneCountInString(s) > maxFileNameRunes {
		ext := ""
		if i := strings.LastIndexByte(s, '.'); i > 0 && len(s)-i <= 10 {
			ext = s[i:]
		}
		runes := []rune(strings.TrimSuffix(s, ext))
		s = string(runes[:maxFileNameRunes-utf8.RuneCountInString(ext)]) + ext
	}
	return s, nil
}
