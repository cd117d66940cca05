package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// CustomCarrier is the selector value meaning "use the free-text carrier".
const CustomCarrier = "custom"

var (
	lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)
	digitsOnly = regexp.MustCompile(`^[0-9]+$`)
)

// SplitCarrierLines turns admin textarea input into trimmed, non-empty lines.
func SplitCarrierLines(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var lines []string
	for _, line := range lineBreaks.Split(raw, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// CarrierOptions derives the selectable labels from configured lines.
// Bare numbers become "Opción <n>" and duplicates keep their first position.
func CarrierOptions(lines []string) []string {
	options := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		label := line
		if digitsOnly.MatchString(line) {
			label = "Opción " + line
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		options = append(options, label)
	}
	return options
}

// Selection is the customer's carrier choice for one instance.
type Selection struct {
	Carrier    string `json:"carrier,omitempty"`
	CustomText string `json:"customText,omitempty"`
}

// IsEmpty reports whether neither field carries a value.
func (s Selection) IsEmpty() bool {
	return s.Carrier == "" && s.CustomText == ""
}

// IsCustom reports whether the customer picked the free-text option.
func (s Selection) IsCustom() bool {
	return s.Carrier == CustomCarrier
}

// Display returns the value shown next to the rate label.
func (s Selection) Display() string {
	if s.IsCustom() && s.CustomText != "" {
		return s.CustomText
	}
	return s.Carrier
}

// ResolveLabel maps a resolved carrier value onto a configured option.
// A bare integer is read as a position in the option list; a position
// outside the list yields "".
func ResolveLabel(options []string, value string) string {
	if !digitsOnly.MatchString(value) {
		return value
	}
	idx, err := strconv.Atoi(value)
	if err != nil || idx < 0 || idx >= len(options) {
		return ""
	}
	return options[idx]
}
