package attr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsersReturnEmptyForBlankCells(t *testing.T) {
	for _, cell := range []string{"", "   ", "nan", "none", "无", " 无 "} {
		for name, parse := range map[string]func(string) []string{
			"label_f": ParseLabelF,
			"pred_f":  ParsePredF,
			"ab":      ParseAB,
		} {
			got := parse(cell)
			if got == nil || len(got) != 0 {
				t.Errorf("%s(%q) = %#v, want empty non-nil slice", name, cell, got)
			}
		}
	}
}

func TestParsePredF(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "key_value", in: "材质:棉,颜色:红", want: []string{"棉", "红"}},
		{name: "full_width_comma", in: "材质:棉，颜色:红", want: []string{"棉", "红"}},
		{name: "no_colon_kept", in: "纯棉, 颜色:红", want: []string{"纯棉", "红"}},
		{name: "full_width_colon_not_separator", in: "材质：棉", want: []string{"材质：棉"}},
		{name: "second_colon_cuts", in: "时间:10:00", want: []string{"10"}},
		{name: "sentinel_items_dropped", in: "材质:棉,nan,,无", want: []string{"棉"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParsePredF(tt.in)); diff != "" {
				t.Errorf("ParsePredF(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseLabelF(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "full_width_colon", in: "材质：棉, 颜色：红", want: []string{"棉", "红"}},
		{name: "ascii_colon", in: "材质:棉,颜色:红", want: []string{"棉", "红"}},
		{name: "mixed", in: "材质：棉，颜色:红", want: []string{"棉", "红"}},
		{name: "verbatim", in: "进口器械", want: []string{"进口器械"}},
		{name: "full_width_wins", in: "营业：时间:10点", want: []string{"时间:10点"}},
		{name: "empty_value_dropped", in: "材质：, 颜色：红", want: []string{"红"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseLabelF(tt.in)); diff != "" {
				t.Errorf("ParseLabelF(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseAB(t *testing.T) {
	if diff := cmp.Diff([]string{"轻便", "耐用"}, ParseAB("轻便, 耐用")); diff != "" {
		t.Errorf("ParseAB mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a:b", "c"}, ParseAB("a:b，c")); diff != "" {
		t.Errorf("ParseAB kept values verbatim mismatch (-want +got):\n%s", diff)
	}
	if got := ParseAB(""); len(got) != 0 {
		t.Errorf("ParseAB(\"\") = %v, want empty", got)
	}
}

func TestAttributesGrouping(t *testing.T) {
	s := Attributes{F: []string{"棉"}, A: []string{"舒适"}, B: []string{"耐用", "舒适"}}

	if diff := cmp.Diff([]string{"舒适", "耐用", "舒适"}, s.Subjective()); diff != "" {
		t.Errorf("Subjective mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"舒适", "耐用", "舒适", "棉"}, s.Combined()); diff != "" {
		t.Errorf("Combined mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 4 || s.Empty() {
		t.Errorf("Len() = %d, Empty() = %v", s.Len(), s.Empty())
	}
	if !(Attributes{}).Empty() {
		t.Error("zero Attributes should be empty")
	}
	if !Contains(s.Objective(), "棉") || Contains(s.Objective(), "舒适") {
		t.Error("Contains gave the wrong answer for F values")
	}
}
