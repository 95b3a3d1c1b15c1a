package score

// Counters are the six running totals behind the reported ratios.
type Counters struct {
	PrecisionHits  int `json:"precision_hits" yaml:"precision_hits"`
	PrecisionTotal int `json:"precision_total" yaml:"precision_total"`
	RecallHits     int `json:"recall_hits" yaml:"recall_hits"`
	RecallTotal    int `json:"recall_total" yaml:"recall_total"`
	ClassHits      int `json:"classification_hits" yaml:"classification_hits"`
	ClassTotal     int `json:"classification_total" yaml:"classification_total"`
}

// Add adds d to c.
func (c *Counters) Add(d Counters) {
	c.PrecisionHits += d.PrecisionHits
	c.PrecisionTotal += d.PrecisionTotal
	c.RecallHits += d.RecallHits
	c.RecallTotal += d.RecallTotal
	c.ClassHits += d.ClassHits
	c.ClassTotal += d.ClassTotal
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func (c Counters) Precision() float64 {
	return ratio(c.PrecisionHits, c.PrecisionTotal)
}

func (c Counters) Recall() float64 {
	return ratio(c.RecallHits, c.RecallTotal)
}

// F1 is the harmonic mean of precision and recall, zero when both are.
func (c Counters) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func (c Counters) ClassificationAccuracy() float64 {
	return ratio(c.ClassHits, c.ClassTotal)
}
