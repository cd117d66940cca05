package domain

import (
	"regexp"
	"strings"
	"unicode"

	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
)

// FormSubmission carries the carrier fields posted with the checkout form.
// A key present with an empty value means the field was submitted blank.
type FormSubmission struct {
	Carriers map[shipdomain.InstanceID]string
	Customs  map[shipdomain.InstanceID]string
}

// Carrier returns the submitted carrier and whether it was submitted at all.
func (f FormSubmission) Carrier(id shipdomain.InstanceID) (string, bool) {
	v, ok := f.Carriers[id]
	return v, ok
}

// Custom returns the submitted custom text and whether it was submitted at all.
func (f FormSubmission) Custom(id shipdomain.InstanceID) (string, bool) {
	v, ok := f.Customs[id]
	return v, ok
}

// IsEmpty reports whether no carrier field was posted.
func (f FormSubmission) IsEmpty() bool {
	return len(f.Carriers) == 0 && len(f.Customs) == 0
}

// Instances lists every instance that appears in either map.
func (f FormSubmission) Instances() []shipdomain.InstanceID {
	seen := map[shipdomain.InstanceID]struct{}{}
	var ids []shipdomain.InstanceID
	for _, m := range []map[shipdomain.InstanceID]string{f.Carriers, f.Customs} {
		for id := range m {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// Sanitized returns a copy with every value passed through SanitizeText.
func (f FormSubmission) Sanitized() FormSubmission {
	out := FormSubmission{
		Carriers: make(map[shipdomain.InstanceID]string, len(f.Carriers)),
		Customs:  make(map[shipdomain.InstanceID]string, len(f.Customs)),
	}
	for id, v := range f.Carriers {
		out.Carriers[id] = SanitizeText(v)
	}
	for id, v := range f.Customs {
		out.Customs[id] = SanitizeText(v)
	}
	return out
}

var (
	markup     = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// SanitizeText strips markup and control characters, collapses runs of
// whitespace and trims the result.
func SanitizeText(raw string) string {
	out := markup.ReplaceAllString(raw, "")
	out = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, out)
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
