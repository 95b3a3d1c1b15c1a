// Package consult holds the per-record log of oracle consultations that
// links the querying stage to the scoring stage.
package consult

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zhang-3000/meituan/internal/attr"
	"github.com/zhang-3000/meituan/internal/oracle"
)

// Side tells which side of a record a value came from.
type Side string

const (
	SidePredicted Side = "predict"
	SideLabel     Side = "label"
)

// Origin tags a consultation with the side and category of its value.
type Origin string

const (
	PredictA Origin = "predict_a"
	PredictB Origin = "predict_b"
	PredictF Origin = "predict_f"
	LabelA   Origin = "label_a"
	LabelB   Origin = "label_b"
	LabelF   Origin = "label_f"
)

// OriginFor builds the origin tag for a side and category.
func OriginFor(side Side, c attr.Category) Origin {
	return Origin(string(side) + "_" + string(c))
}

// Consultation is one logged oracle call.
type Consultation struct {
	Origin   Origin `json:"type"`
	Value    string `json:"value"`
	Response string `json:"llm_response"`
}

// Key addresses a consultation within a record.
type Key struct {
	Origin Origin
	Value  string
}

// Log is the ordered list of consultations of one record with an index by
// Key. Repeated keys are all kept; lookups see the latest.
type Log struct {
	entries []Consultation
	index   map[Key]int
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{index: make(map[Key]int)}
}

// Add appends the consultation of value under origin.
func (l *Log) Add(origin Origin, value string, v oracle.Verdict) {
	l.append(Consultation{Origin: origin, Value: value, Response: v.Response()})
}

func (l *Log) append(c Consultation) {
	if l.index == nil {
		l.index = make(map[Key]int)
	}
	l.index[Key{Origin: c.Origin, Value: c.Value}] = len(l.entries)
	l.entries = append(l.entries, c)
}

// Lookup returns the verdict logged for (origin, value). A nil log has no
// entries.
func (l *Log) Lookup(origin Origin, value string) (oracle.Verdict, bool) {
	if l == nil {
		return oracle.Verdict{}, false
	}
	i, ok := l.index[Key{Origin: origin, Value: value}]
	if !ok {
		return oracle.Verdict{}, false
	}
	return oracle.FromResponse(l.entries[i].Response), true
}

// Len is the number of logged consultations.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Entries returns the consultations in the order they were made.
func (l *Log) Entries() []Consultation {
	if l == nil {
		return nil
	}
	out := make([]Consultation, len(l.entries))
	copy(out, l.entries)
	return out
}

// MarshalJSON encodes the log as a JSON array, empty when there are no
// entries.
func (l *Log) MarshalJSON() ([]byte, error) {
	entries := l.Entries()
	if entries == nil {
		entries = []Consultation{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// String is the cell text stored in the output table.
func (l *Log) String() string {
	data, err := l.MarshalJSON()
	if err != nil {
		return "[]"
	}
	return string(data)
}

// Parse decodes a cell written by String. A blank cell is an empty log.
func Parse(blob string) (*Log, error) {
	l := NewLog()
	blob = strings.TrimSpace(blob)
	if blob == "" || blob == "nan" {
		return l, nil
	}

	var entries []Consultation
	if err := json.Unmarshal([]byte(blob), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode consultation log: %w", err)
	}
	for _, c := range entries {
		l.append(c)
	}
	return l, nil
}
