package normalize

// quoteRunes are the characters treated as quotation marks around values.
var quoteRunes = map[rune]bool{
	'\'':     true,
	'"':      true,
	'`':      true,
	'\u2018': true, // left single quotation mark
	'\u2019': true, // right single quotation mark
	'\u201c': true, // left double quotation mark
	'\u201d': true, // right double quotation mark
}

// Quote is the canonical quote token emitted by SymbolFilter.
const Quote = "'"

// IsQuote reports whether tok is a bare quotation token.
func IsQuote(tok string) bool {
	switch tok {
	case "``", "''":
		return true
	}
	r := []rune(tok)
	return len(r) == 1 && quoteRunes[r[0]]
}

// SymbolFilter detaches quotation marks from quoted words so that every quote
// becomes a standalone canonical Quote token.
//
//	"'Ford'" -> "'", "Ford", "'"
//	"'New"   -> "'", "New"
//	"York'"  -> "York", "'"
func SymbolFilter(toks []string) []string {
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		r := []rune(tok)
		if len(r) > 2 {
			open := quoteRunes[r[0]]
			closed := quoteRunes[r[len(r)-1]]
			switch {
			case open && closed:
				out = append(out, Quote, string(r[1:len(r)-1]), Quote)
				continue
			case open:
				out = append(out, Quote, string(r[1:]))
				continue
			case closed:
				out = append(out, string(r[:len(r)-1]), Quote)
				continue
			}
		}
		if IsQuote(tok) {
			out = append(out, Quote)
			continue
		}
		out = append(out, tok)
	}
	return out
}
