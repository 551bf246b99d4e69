// Package i18n resolves UI cultures and translates UI strings.
package i18n

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// DevCulture is the culture the framework's own strings are authored in.
// Translation is skipped entirely when the UI culture equals it.
const DevCulture = "zh-CN"

// ErrUnknownCulture is returned for culture names that are not valid BCP 47
// tags known to the language registry.
var ErrUnknownCulture = errors.New("unknown culture")

var devTag = language.MustParse(DevCulture)

// ParseCulture parses a culture name such as "en-US" or "en_US.UTF-8".
func ParseCulture(name string) (language.Tag, error) {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, "_", "-")
	if name == "" || strings.EqualFold(name, "C") || strings.EqualFold(name, "POSIX") {
		return language.Und, fmt.Errorf("%w: %q", ErrUnknownCulture, name)
	}

	tag, err := language.Parse(name)
	if err != nil {
		return language.Und, fmt.Errorf("%w: %q: %v", ErrUnknownCulture, name, err)
	}
	return tag, nil
}

// IsDevCulture reports whether name denotes DevCulture.
func IsDevCulture(name string) bool {
	tag, err := ParseCulture(name)
	if err != nil {
		return false
	}
	return tag == devTag
}

// SystemCulture returns the process culture from LC_ALL, LC_MESSAGES or
// LANG, falling back to en-US.
func SystemCulture() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if tag, err := ParseCulture(os.Getenv(key)); err == nil {
			return tag.String()
		}
	}
	return language.AmericanEnglish.String()
}
