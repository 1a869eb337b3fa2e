package isnad

import "strings"

// ExtractIsnad returns the chain prefix of a hadith's Arabic text: the text
// before the first phrase that hands over to the Prophet. It returns "" when
// no such phrase exists, since the chain boundary is then unknown.
func ExtractIsnad(arabic string) string {
	ws := splitWords(arabic)
	for i := range ws {
		if matchAt(ws, i, prophetPhrases) > 0 {
			return join(ws[:i])
		}
	}
	return ""
}

// ParseChain returns the ordered narrator names of a chain, first reporter
// first. ok is false when no name could be extracted.
func ParseChain(isnad string) (names []string, ok bool) {
	ws := splitWords(isnad)

	var cur []string
	collecting := true
	emit := func() {
		if len(cur) > 0 {
			name := strings.Join(cur, " ")
			if Key(name) != "" {
				names = append(names, name)
			}
		}
		cur = cur[:0]
	}

	for i := 0; i < len(ws); {
		if matchAt(ws, i, prophetPhrases) > 0 {
			break
		}
		if n := matchConnective(ws, i); n > 0 {
			emit()
			collecting = true
			i += n
			continue
		}
		if n := matchAt(ws, i, honorifics); n > 0 {
			i += n
			continue
		}
		w := ws[i]
		i++
		if w.term {
			emit()
			collecting = false
			continue
		}
		if collecting {
			cur = append(cur, w.raw)
		}
	}
	emit()
	return names, len(names) > 0
}

func join(ws []word) string {
	var b strings.Builder
	for _, w := range ws {
		if w.term {
			b.WriteString("،")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w.raw)
	}
	return strings.TrimSpace(b.String())
}
