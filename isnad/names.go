package isnad

import "strings"

// Key returns the identity key of a narrator spelling: Arabic normalization,
// case folding and whitespace collapse, with honorifics and punctuation
// removed. Spellings with equal keys denote the same narrator.
func Key(name string) string {
	ws := splitWords(name)
	parts := make([]string, 0, len(ws))
	for i := 0; i < len(ws); {
		if n := matchAt(ws, i, honorifics); n > 0 {
			i += n
			continue
		}
		if !ws[i].term {
			parts = append(parts, strings.Trim(ws[i].norm, "'’-"))
		}
		i++
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
