package password

import (
	"regexp"
	"unicode/utf8"
)

// Strength is a coarse password strength tier.
type Strength int

const (
	// TooWeak passwords satisfy no tier.
	TooWeak Strength = iota
	// Weak passwords mix at least two character classes over six characters.
	Weak
	// Medium passwords mix all four classes over eight characters.
	Medium
	// Strong passwords mix all four classes over ten characters.
	Strong
)

func (s Strength) String() string {
	switch s {
	case TooWeak:
		return "Too weak"
	case Weak:
		return "Weak"
	case Medium:
		return "Medium"
	case Strong:
		return "Strong"
	default:
		return "Unknown"
	}
}

type tier struct {
	level     Strength
	diversity int
	length    int
}

// Highest tier first.
var tiers = []tier{
	{level: Strong, diversity: 4, length: 10},
	{level: Medium, diversity: 4, length: 8},
	{level: Weak, diversity: 2, length: 6},
}

var classes = []*regexp.Regexp{
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile("[!\"#$%&'()*+,\\-./:;<=>?@\\[\\\\\\]^_`{|}~ ]"),
}

// Assess scores plaintext by character-class diversity and length.
func Assess(plaintext string) Strength {
	diversity := 0
	for _, re := range classes {
		if re.MatchString(plaintext) {
			diversity++
		}
	}
	length := utf8.RuneCountInString(plaintext)

	for _, t := range tiers {
		if diversity >= t.diversity && length >= t.length {
			return t.level
		}
	}
	return TooWeak
}
