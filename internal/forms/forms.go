// Package forms validates the TidBid forms. Failures are reported per
// field, never as errors.
package forms

import (
	"regexp"
	"sort"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[+]?[\d\s\-()]{10,}$`)
)

// Errors maps a field name to the message shown under it.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool { return len(e) == 0 }

// Fields returns the failing field names, sorted.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// add keeps the first message recorded for a field.
func (e Errors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func ValidEmail(s string) bool { return emailPattern.MatchString(s) }

func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Initials builds the avatar initials from a display name.
func Initials(name string) string {
	var b strings.Builder
	for _, w := range strings.Fields(name) {
		for _, r := range w {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}

// CounterLevel grades the chat box character counter.
type CounterLevel string

const (
	CounterNormal  CounterLevel = "normal"
	CounterWarning CounterLevel = "warning"
	CounterDanger  CounterLevel = "danger"
)

func Counter(length int) CounterLevel {
	switch {
	case length > 450:
		return CounterDanger
	case length > 400:
		return CounterWarning
	default:
		return CounterNormal
	}
}
