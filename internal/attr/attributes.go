package attr

// Attributes holds the three attribute lists of one side of a record.
type Attributes struct {
	F []string
	A []string
	B []string
}

// LabelAttributes parses the human-annotated cells of a record.
func LabelAttributes(f, a, b string) Attributes {
	return Attributes{F: ParseLabelF(f), A: ParseAB(a), B: ParseAB(b)}
}

// PredictedAttributes parses the model-predicted cells of a record.
func PredictedAttributes(f, a, b string) Attributes {
	return Attributes{F: ParsePredF(f), A: ParseAB(a), B: ParseAB(b)}
}

// Values returns the list for a category.
func (s Attributes) Values(c Category) []string {
	switch c {
	case CategoryA:
		return s.A
	case CategoryB:
		return s.B
	case CategoryF:
		return s.F
	default:
		return nil
	}
}

// Subjective returns A followed by B.
func (s Attributes) Subjective() []string {
	out := make([]string, 0, len(s.A)+len(s.B))
	out = append(out, s.A...)
	return append(out, s.B...)
}

// Objective returns the F values.
func (s Attributes) Objective() []string {
	return s.F
}

// Combined returns the subjective values followed by the objective ones.
func (s Attributes) Combined() []string {
	return append(s.Subjective(), s.F...)
}

// Len is the total number of values across all categories.
func (s Attributes) Len() int {
	return len(s.F) + len(s.A) + len(s.B)
}

// Empty reports whether every category is empty.
func (s Attributes) Empty() bool {
	return s.Len() == 0
}

// Contains reports whether v is an element of values.
func Contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
