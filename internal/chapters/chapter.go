package chapters

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var reUnderscore = regexp.MustCompile(`_+`)

// FileName turns a novel title into a safe base name. Letters of any script
// are kept so that CJK titles survive unchanged.
func FileName(title string) string {
	repl := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	s := repl.Replace(strings.TrimSpace(title))

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			r == '_' || r == '-' || r == '.' || r == '(' || r == ')' {
			clean = append(clean, r)
		}
	}
	s = reUnderscore.ReplaceAllString(string(clean), "_")
	s = strings.Trim(s, "_. ")

	if s == "" {
		return "novel"
	}

	return s
}

func OutputTXT(title string) string {
	return FileName(title) + ".txt"
}

func OutputTXTPath(out, title string) string {
	return filepath.Join(out, OutputTXT(title))
}
