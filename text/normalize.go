package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const tatweel = 'ـ'

func isArabicDiacritic(r rune) bool {
	return (r >= 'ً' && r <= 'ٟ') || r == 'ٰ' || (r >= 'ۖ' && r <= 'ۭ')
}

func foldArabicLetter(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ', 'ٱ':
		return 'ا'
	case 'ى':
		return 'ي'
	case 'ة':
		return 'ه'
	}
	return r
}

// NormalizeArabic returns the search form of Arabic text.
func NormalizeArabic(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case isArabicDiacritic(r), r == tatweel, r == '‏', r == '‎':
			continue
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(foldArabicLetter(r))
	}
	return b.String()
}

// FoldEnglish returns the search form of English text.
// A Caser is stateful, so one is created per call.
func FoldEnglish(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// Normalize folds s for comparisons that may mix scripts, such as
// narrator names: Arabic normalization, case folding and whitespace collapse.
func Normalize(s string) string {
	return strings.Join(strings.Fields(FoldEnglish(NormalizeArabic(s))), " ")
}
