package token

// AnnotatedQuestion is the tagger output handed to a semantic parser.
//
// Tokens and OriginTokens are index-aligned: OriginTokens keeps the original
// casing, Tokens is lower-cased and lemmatized and may contain in-place
// rewrites made while tagging (e.g. a year numeral rewritten to "year").
type AnnotatedQuestion struct {
	DBID         string   `json:"db_id,omitempty"`
	Question     string   `json:"question,omitempty"`
	Tokens       []string `json:"question_toks"`
	OriginTokens []string `json:"origin_question_toks"`
	POS          []string `json:"nltk_pos"`
	Spans        []Span   `json:"spans"`
}

// ArgTokens returns the token groups of each span (question_arg).
func (q *AnnotatedQuestion) ArgTokens() [][]string {
	out := make([][]string, len(q.Spans))
	for i, s := range q.Spans {
		out[i] = append([]string(nil), q.Tokens[s.Start:s.End]...)
	}
	return out
}

// ArgTypes returns the one-element tag lists of each span (question_arg_type).
func (q *AnnotatedQuestion) ArgTypes() [][]string {
	out := make([][]string, len(q.Spans))
	for i, s := range q.Spans {
		out[i] = s.Tag.Wire()
	}
	return out
}

// Validate checks the partition invariant and the POS alignment.
func (q *AnnotatedQuestion) Validate() error {
	if len(q.POS) != len(q.Tokens) {
		return &PartitionError{Index: -1, Message: "pos tags are not aligned with tokens"}
	}
	return CheckPartition(q.Spans, len(q.Tokens))
}
