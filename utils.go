package smx

import (
	"strings"
	"unicode"

	"github.com/gobwas/glob"
)

// globMatch matches a dotted settings key against a glob pattern. A single
// asterisk stays within one key component, a double asterisk spans components.
func globMatch(pattern, s string) (bool, error) {
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return false, err
	}

	return g.Match(s), nil
}

// splitKey splits a settings key into its first component and the rest.
//
// Valid examples:
// - editor.files.tool -> editor, files.tool
// - debug -> debug, "".
func splitKey(key string) (section, rest string) { //nolint:nonamedreturns
	section, rest, _ = strings.Cut(key, ".")

	return section, rest
}

// validKey reports whether key is a usable settings key: non empty, no
// whitespace and no empty components.
func validKey(key string) bool {
	if key == "" {
		return false
	}

	if strings.ContainsFunc(key, unicode.IsSpace) {
		return false
	}

	for _, part := range strings.Split(key, ".") {
		if part == "" {
			return false
		}
	}

	return true
}

// validID reports whether id can name a target or unit. Target ids double
// as folder names.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}

	return !strings.ContainsFunc(id, func(r rune) bool {
		return r == '/' || r == '\\' || unicode.IsSpace(r) || unicode.IsControl(r)
	})
}

func trim(s []string) {
	for i, e := range s {
		s[i] = strings.TrimSpace(e)
	}
}
