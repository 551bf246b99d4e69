package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator translates UI strings into one current culture. A disabled
// translator returns keys unchanged.
type Translator struct {
	mu      sync.RWMutex
	culture string
	enabled bool
	builder *catalog.Builder
	printer *message.Printer
}

// NewTranslator returns a disabled translator with an empty catalog.
func NewTranslator() *Translator {
	return &Translator{builder: catalog.NewBuilder()}
}

// CurrentCulture returns the culture translations are produced for.
func (t *Translator) CurrentCulture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.culture
}

// SetCurrentCulture changes the target culture.
func (t *Translator) SetCurrentCulture(name string) error {
	tag, err := ParseCulture(name)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.culture = tag.String()
	t.printer = nil
	return nil
}

// Enabled reports whether Translate looks up the catalog.
func (t *Translator) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetEnabled turns translation on or off.
func (t *Translator) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Add registers a translation of key for culture. text is literal; it is
// not a format string.
func (t *Translator) Add(culture, key, text string) error {
	tag, err := ParseCulture(culture)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.builder.SetString(tag, key, escapeVerbs(text)); err != nil {
		return err
	}
	t.printer = nil
	return nil
}

// Translate returns key in the current culture, or key itself when the
// translator is disabled or has no entry.
func (t *Translator) Translate(key string) string {
	t.mu.RLock()
	if !t.enabled || t.culture == "" {
		t.mu.RUnlock()
		return key
	}
	p := t.printer
	t.mu.RUnlock()

	if p == nil {
		t.mu.Lock()
		if t.printer == nil {
			t.printer = message.NewPrinter(language.Make(t.culture), message.Catalog(t.builder))
		}
		p = t.printer
		t.mu.Unlock()
	}
	return p.Sprintf(message.Key(key, escapeVerbs(key)))
}

// escapeVerbs makes s print literally when used as a format string.
func escapeVerbs(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}
