package text

var englishStopwords = toSet(FoldEnglish, []string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on",
	"at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this",
	"that", "these", "those", "from", "up", "down", "over", "under", "again", "so", "such",
	"into", "about", "than", "too", "very", "can", "will", "just", "he", "she", "his", "her",
	"him", "they", "them", "their", "we", "us", "our", "you", "your", "me", "my", "i",
})

var arabicStopwords = toSet(NormalizeArabic, []string{
	"في", "من", "على", "إلى", "أن", "إن", "ما", "لا", "لم", "هو", "هي", "ثم", "أو", "قد",
	"كان", "هذا", "هذه", "ذلك", "التي", "الذي", "فيه", "به", "له", "لها",
})

func toSet(normalize func(string) string, words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[normalize(w)] = struct{}{}
	}
	return m
}
