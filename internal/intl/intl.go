// Package intl provides locale-aware number formatting shared by the value
// renderer and the result footer.
package intl

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printers sync.Map // locale string -> *message.Printer

// Printer returns a cached message printer for the locale. Unknown locales
// fall back to English.
func Printer(locale string) *message.Printer {
	if p, ok := printers.Load(locale); ok {
		return p.(*message.Printer)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	printers.Store(locale, p)
	return p
}

// Valid reports whether locale parses as a BCP 47 tag.
func Valid(locale string) bool {
	_, err := language.Parse(locale)
	return err == nil
}

// FormatInt renders a signed integer with the locale's digit grouping.
func FormatInt(locale string, v int64) string {
	return Printer(locale).Sprint(number.Decimal(v))
}

// FormatUint renders an unsigned integer with the locale's digit grouping.
func FormatUint(locale string, v uint64) string {
	return Printer(locale).Sprint(number.Decimal(v))
}
