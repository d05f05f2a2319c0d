package trending

// Term is a discovered word or phrase with its batch-wide occurrence count.
type Term struct {
	Text  string `json:"text" bson:"text"`
	Count int    `json:"count" bson:"count"`
}

// Set holds the trending vocabulary discovered in one scan batch. It is a
// transient aggregate: recomputed per batch, ordered by count descending,
// and every member count meets the minimum-frequency threshold the
// discoverer was configured with.
type Set struct {
	Words   []Term `json:"words" bson:"words"`
	Phrases []Term `json:"phrases" bson:"phrases"`
}

// Top returns a copy of the set truncated to the given number of words
// and phrases, for compact API payloads.
func (s Set) Top(words, phrases int) Set {
	out := Set{Words: s.Words, Phrases: s.Phrases}
	if len(out.Words) > words {
		out.Words = out.Words[:words]
	}
	if len(out.Phrases) > phrases {
		out.Phrases = out.Phrases[:phrases]
	}
	return out
}

// IsEmpty reports whether the set contains no terms at all.
func (s Set) IsEmpty() bool {
	return len(s.Words) == 0 && len(s.Phrases) == 0
}
