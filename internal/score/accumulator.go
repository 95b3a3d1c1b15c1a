package score

import "github.com/zhang-3000/meituan/internal/attr"

// SegmentStats are the counters of one segment.
type SegmentStats struct {
	Segment string `json:"segment" yaml:"segment"`

	Counters `yaml:",inline"`

	// Records counts every tracked row of the segment, including rows
	// skipped for being empty.
	Records int `json:"records" yaml:"records"`
}

// Accumulator sums record outcomes globally and per segment.
type Accumulator struct {
	order    []string
	total    Counters
	records  int
	segments map[string]*SegmentStats
}

// NewAccumulator reports segments in the given order; segments observed
// but not listed follow in first-seen order.
func NewAccumulator(order []string) *Accumulator {
	return &Accumulator{
		order:    append([]string(nil), order...),
		segments: make(map[string]*SegmentStats),
	}
}

// Observe adds the outcome of one record of segment.
func (a *Accumulator) Observe(segment string, o Outcome) {
	s, ok := a.segments[segment]
	if !ok {
		s = &SegmentStats{Segment: segment}
		a.segments[segment] = s
		if !attr.Contains(a.order, segment) {
			a.order = append(a.order, segment)
		}
	}

	s.Records++
	a.records++
	if o.Skipped {
		return
	}
	s.Add(o.Delta)
	a.total.Add(o.Delta)
}

// Total returns the global counters.
func (a *Accumulator) Total() Counters {
	return a.total
}

// Records is the number of observed records.
func (a *Accumulator) Records() int {
	return a.records
}

// Segments returns the stats of every observed segment.
func (a *Accumulator) Segments() []SegmentStats {
	out := make([]SegmentStats, 0, len(a.segments))
	for _, name := range a.order {
		if s, ok := a.segments[name]; ok {
			out = append(out, *s)
		}
	}
	return out
}

