package text

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/hupe1980/hfabric/model"
)

// TokenizerVersion identifies the normalization and tokenization rules.
// Text indexes record it; the loader rejects indexes built with another one.
const TokenizerVersion = "hf-tok/1"

// ErrUnsupportedLanguage is returned for languages without a tokenizer.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ParseLanguage maps a user supplied language name to a model.Language.
func ParseLanguage(s string) (model.Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arabic", "ar":
		return model.Arabic, nil
	case "english", "en":
		return model.English, nil
	case "both", "all":
		return model.Both, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
}

// Languages lists the languages that have their own token space.
var Languages = []model.Language{model.Arabic, model.English}

// Tokenize splits s into normalized tokens of the given language, in text
// order and including repeats. Stopwords and single-rune tokens are dropped.
func Tokenize(lang model.Language, s string) ([]string, error) {
	switch lang {
	case model.Arabic:
		return splitRuns(NormalizeArabic(s), isArabicLetter, arabicStopwords), nil
	case model.English:
		return trimPossessive(splitRuns(FoldEnglish(s), isLatinWordRune, englishStopwords)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
}

// MustTokenize is Tokenize for languages known to be supported.
func MustTokenize(lang model.Language, s string) []string {
	toks, err := Tokenize(lang, s)
	if err != nil {
		panic(err)
	}
	return toks
}

// Terms returns the distinct tokens of s in ascending order.
func Terms(lang model.Language, s string) ([]string, error) {
	toks, err := Tokenize(lang, s)
	if err != nil {
		return nil, err
	}
	return Unique(toks), nil
}

// Unique returns the distinct values of toks in ascending order.
func Unique(toks []string) []string {
	if len(toks) == 0 {
		return nil
	}
	out := append([]string(nil), toks...)
	sort.Strings(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

func isArabicLetter(r rune) bool {
	return unicode.Is(unicode.Arabic, r) && unicode.IsLetter(r)
}

func isLatinWordRune(r rune) bool {
	return unicode.Is(unicode.Latin, r) || (r >= '0' && r <= '9')
}

func isApostrophe(r rune) bool { return r == '\'' || r == '’' }

// splitRuns collects maximal runs of runes accepted by in. An apostrophe
// between two accepted runes stays inside the token.
func splitRuns(s string, in func(rune) bool, stop map[string]struct{}) []string {
	var out []string
	rs := []rune(s)
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := string(rs[start:end])
		start = -1
		if len([]rune(tok)) < 2 {
			return
		}
		if _, ok := stop[tok]; ok {
			return
		}
		out = append(out, tok)
	}
	for i, r := range rs {
		switch {
		case in(r):
			if start < 0 {
				start = i
			}
		case isApostrophe(r) && start >= 0 && i+1 < len(rs) && in(rs[i+1]):
			// inner apostrophe
		default:
			flush(i)
		}
	}
	flush(len(rs))
	return out
}

func trimPossessive(toks []string) []string {
	for i, t := range toks {
		for _, suffix := range []string{"'s", "’s"} {
			if strings.HasSuffix(t, suffix) && len(t) > len(suffix)+1 {
				toks[i] = t[:len(t)-len(suffix)]
			}
		}
	}
	return toks
}
