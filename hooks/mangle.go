package hooks

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w]+`)

// CamelName mangles a human-readable activity name into a lowerCamelCase
// identifier: the name is split on whitespace, each word is stripped of
// non-word characters, the first surviving word is lower-cased and every
// subsequent word is capitalised, then the words are concatenated.
//
//	"fetch data"   -> "fetchData"
//	"Retry! Once"  -> "retryOnce"
func CamelName(activityName string) string {
	words := strings.Fields(activityName)
	var b strings.Builder
	first := true
	for _, w := range words {
		clean := nonWord.ReplaceAllString(w, "")
		if clean == "" {
			continue
		}
		if first {
			b.WriteString(strings.ToLower(clean))
			first = false
			continue
		}
		b.WriteString(capitalize(clean))
	}
	return b.String()
}

// MethodName computes the Go method name a hook source must expose to
// receive the named lifecycle event for the given activity. Go identifiers
// cannot contain the `$` the spec's naming convention uses, so the event
// and the mangled name are joined by capitalising both instead of
// separating them with a punctuation character: event "before" and
// activity "fetch data" mangle to "BeforeFetchData".
func MethodName(event, activityName string) string {
	camel := CamelName(activityName)
	if camel == "" {
		return ""
	}
	return capitalize(strings.ToLower(event)) + capitalizeFirst(camel)
}

// capitalize upper-cases the leading rune and lower-cases the remainder; it
// is used for plain words (event names, individual name fragments) where no
// internal casing needs to survive.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// capitalizeFirst upper-cases only the leading rune, preserving whatever
// casing the rest of the string already has. Used on an already-mangled
// camelCase identifier, where later letters carry meaningful capitals.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
