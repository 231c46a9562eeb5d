package interval

import (
	"testing"

	"staffbook/internal/model"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(540); got != "09:00" {
		t.Errorf("FormatClock(540) = %q, want 09:00", got)
	}
	if got := FormatClock(1439); got != "23:59" {
		t.Errorf("FormatClock(1439) = %q, want 23:59", got)
	}
	if got := FormatClock(0); got != "00:00" {
		t.Errorf("FormatClock(0) = %q, want 00:00", got)
	}
}

func TestSpanOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"partial overlap", Span{540, 600}, Span{570, 630}, true},
		{"containment", Span{540, 1020}, Span{600, 660}, true},
		{"identical", Span{540, 600}, Span{540, 600}, true},
		{"touching is not overlapping", Span{540, 600}, Span{600, 660}, false},
		{"disjoint", Span{540, 600}, Span{720, 780}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSpanContains(t *testing.T) {
	outer := Span{540, 1020} // 09:00-17:00
	tests := []struct {
		name  string
		inner Span
		want  bool
	}{
		{"strict inside", Span{600, 660}, true},
		{"matching boundaries", Span{540, 1020}, true},
		{"starts before", Span{500, 600}, false},
		{"runs past end", Span{1000, 1080}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.inner); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", outer, tt.inner, got, tt.want)
			}
		})
	}
}

func TestSpanIntersect(t *testing.T) {
	a := Span{540, 720} // 09:00-12:00
	b := Span{600, 780} // 10:00-13:00

	got, ok := a.Intersect(b)
	if !ok || got != (Span{600, 720}) {
		t.Errorf("Intersect = %v, %v; want {600 720}, true", got, ok)
	}

	if _, ok := a.Intersect(Span{720, 780}); ok {
		t.Error("touching spans must not intersect")
	}
}

func TestFromSlots(t *testing.T) {
	slots := []model.TimeSlot{
		{Start: "14:00", End: "18:00"},
		{Start: "09:00", End: "12:00"},
		{Start: "12:00", End: "10:00"}, // inverted, skipped
		{Start: "abc", End: "10:00"},   // malformed, skipped
		{Start: "10:00", End: "10:00"}, // zero length, skipped
	}

	spans := FromSlots(slots)
	if len(spans) != 2 {
		t.Fatalf("expected 2 valid spans, got %d", len(spans))
	}
	// Sorted by start.
	if spans[0] != (Span{540, 720}) || spans[1] != (Span{840, 1080}) {
		t.Errorf("unexpected spans: %v", spans)
	}
}

func TestIntersectAll(t *testing.T) {
	open := []Span{{540, 720}, {780, 1020}} // 09-12, 13-17
	clamp := []Span{{600, 900}}             // 10-15
	want := []Span{{600, 720}, {780, 900}}  // 10-12, 13-15

	got := IntersectAll(open, clamp)
	if len(got) != len(want) {
		t.Fatalf("expected %d spans, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("span %d = %v, want %v", i, got[i], want[i])
		}
	}

	if got := IntersectAll(open, nil); got != nil {
		t.Errorf("empty clamp should empty the result, got %v", got)
	}
}
