package textnorm

// stopwords are common English function words plus job-posting filler that carry no signal
// when comparing a résumé with a job description.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true, "if": true,
	"then": true, "than": true, "so": true, "as": true, "at": true, "by": true, "for": true,
	"from": true, "in": true, "into": true, "of": true, "on": true, "to": true, "with": true,
	"about": true, "up": true, "out": true, "it": true, "its": true, "this": true, "that": true,
	"these": true, "those": true, "is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "do": true, "does": true, "did": true, "have": true, "has": true,
	"had": true, "will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "can": true, "shall": true, "must": true, "not": true, "no": true,
	"i": true, "me": true, "my": true, "we": true, "our": true, "us": true, "you": true,
	"your": true, "they": true, "their": true, "them": true, "he": true, "she": true,
	"his": true, "her": true, "him": true, "what": true, "which": true, "who": true,
	"whom": true, "how": true, "when": true, "where": true, "why": true, "all": true,
	"also": true, "each": true, "more": true, "most": true, "other": true, "some": true,
	"such": true, "any": true, "very": true, "just": true, "s": true, "etc": true,
	"e.g": true, "i.e": true, "per": true, "via": true, "within": true, "across": true,
	"looking": true, "seeking": true, "join": true, "role": true, "position": true,
	"candidate": true, "ideal": true, "plus": true, "including": true,
}

// IsStopword reports whether a normalized token is a stopword.
func IsStopword(token string) bool {
	return stopwords[token]
}
