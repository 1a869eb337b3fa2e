package isnad

import (
	"strings"
	"unicode"

	"github.com/hupe1980/hfabric/text"
)

type phrase []string

func phrases(words ...string) []phrase {
	out := make([]phrase, 0, len(words))
	for _, w := range words {
		out = append(out, strings.Fields(text.Normalize(w)))
	}
	return out
}

var connectives = phrases(
	"حدثنا", "حدثني", "أخبرنا", "أخبرني", "أنبأنا", "أنبأني", "قال", "قالت",
	"سمعت", "سمع", "يقول", "عن", "أن",
	"narrated", "narrated to us", "narrated to me", "said", "says", "from",
	"reported", "reported from", "reported to us", "heard", "told us", "told me",
	"informed us", "informed me", "on the authority of",
)

var prophetPhrases = phrases(
	"قال رسول الله", "سمعت رسول الله", "قال النبي", "يقول النبي", "عن النبي",
	"عن رسول الله", "حدثني رسول الله", "صلى الله عليه وسلم", "رسول الله",
	"فقال رسول الله", "النبي",
	"the prophet", "allah's messenger", "allah's apostle", "messenger of allah",
	"apostle of allah",
)

var honorifics = append(phrases(
	"رضي الله عنه", "رضي الله عنها", "رضي الله عنهما", "رحمه الله",
	"may allah be pleased with him", "may allah be pleased with her",
), phrase{raHonorific})

// raHonorific is the identity form of the parenthesized "(RA)". A bare "ra"
// stays a word.
const raHonorific = "(ra)"

// proclitics are single-letter conjunctions that may be glued to a connective.
var proclitics = []string{"و", "ف"}

// word is a unit of the chain text: either a word or a terminator.
type word struct {
	raw  string // as written, after Arabic normalization
	norm string // identity form
	term bool   // comma, colon, period or semicolon
}

func isTerminator(r rune) bool {
	switch r {
	case '،', ',', ':', ';', '.', '؛', '"', '«', '»':
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '’' || r == '-'
}

func splitWords(s string) []word {
	s = text.NormalizeArabic(s)
	var out []word
	var cur []rune
	flush := func() {
		if len(cur) == 0 {
			return
		}
		raw := string(cur)
		out = append(out, word{raw: raw, norm: text.Normalize(raw)})
		cur = cur[:0]
	}
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case isWordRune(r):
			cur = append(cur, r)
		case isTerminator(r):
			flush()
			out = append(out, word{term: true})
		case r == '(' && i+3 < len(rs) && strings.EqualFold(string(rs[i:i+4]), raHonorific):
			flush()
			out = append(out, word{raw: string(rs[i : i+4]), norm: raHonorific})
			i += 3
		default:
			flush()
		}
	}
	flush()
	return out
}

// matchAt returns the length of the longest phrase in set starting at ws[i].
func matchAt(ws []word, i int, set []phrase) int {
	best := 0
	for _, p := range set {
		if len(p) <= best || i+len(p) > len(ws) {
			continue
		}
		ok := true
		for j, pw := range p {
			if ws[i+j].term || ws[i+j].norm != pw {
				ok = false
				break
			}
		}
		if ok {
			best = len(p)
		}
	}
	return best
}

// matchConnective also accepts a connective with a glued proclitic ("وحدثنا").
func matchConnective(ws []word, i int) int {
	if n := matchAt(ws, i, connectives); n > 0 {
		return n
	}
	if ws[i].term {
		return 0
	}
	for _, p := range proclitics {
		if rest, ok := strings.CutPrefix(ws[i].norm, p); ok && rest != "" {
			probe := []word{{norm: rest}}
			if matchAt(probe, 0, connectives) == 1 {
				return 1
			}
		}
	}
	return 0
}
