package game

import "testing"

func TestRoundGenerator_OptionsInvariant(t *testing.T) {
	set, err := NewColorSet(DefaultPalette, seeded(11))
	if err != nil {
		t.Fatalf("NewColorSet: %v", err)
	}
	gen := NewRoundGenerator(set)
	sawEasy := false
	var prevSeq uint64
	for i := 0; i < 2000; i++ {
		r, err := gen.NextRound()
		if err != nil {
			t.Fatalf("NextRound: %v", err)
		}
		if r.Seq != prevSeq+1 {
			t.Fatalf("Seq %d, want %d", r.Seq, prevSeq+1)
		}
		prevSeq = r.Seq
		if len(r.Options) != OptionsPerRound {
			t.Fatalf("len(Options) %d, want %d", len(r.Options), OptionsPerRound)
		}
		seen := make(map[Color]bool)
		answers := 0
		for _, c := range r.Options {
			if seen[c] {
				t.Fatalf("duplicate option %q in %v", c, r.Options)
			}
			seen[c] = true
			if c == r.DisplayColor {
				answers++
			}
		}
		if answers != 1 {
			t.Fatalf("display color %q appears %d times in %v", r.DisplayColor, answers, r.Options)
		}
		if r.TextColor == r.DisplayColor {
			sawEasy = true
		}
	}
	if !sawEasy {
		t.Error("text and display colors never coincided; they should be drawn independently")
	}
}

func TestRoundGenerator_AnswerPositionUniform(t *testing.T) {
	set, _ := NewColorSet(DefaultPalette, seeded(5))
	gen := NewRoundGenerator(set)
	const rounds = 40000
	var positions [OptionsPerRound]int
	for i := 0; i < rounds; i++ {
		r, _ := gen.NextRound()
		for pos, c := range r.Options {
			if c == r.DisplayColor {
				positions[pos]++
			}
		}
	}
	want := rounds / OptionsPerRound
	for pos, n := range positions {
		if diff := n - want; diff > 500 || diff < -500 {
			t.Errorf("answer at position %d %d times, want ~%d", pos, n, want)
		}
	}
}

func TestRound_IsCorrect(t *testing.T) {
	r := Round{DisplayColor: "blue"}
	if !r.IsCorrect("blue") {
		t.Error("blue should be correct")
	}
	if r.IsCorrect("red") {
		t.Error("red should be wrong")
	}
	if r.IsCorrect(NoColor) {
		t.Error("no answer should be wrong")
	}
}
