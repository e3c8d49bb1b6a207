package game

import "fmt"

// Round is one word/color prompt. TextColor is the word shown, DisplayColor is the ink and the answer.
type Round struct {
	Seq          uint64
	TextColor    Color
	DisplayColor Color
	Options      []Color
}

// IsCorrect reports whether c matches the round's ink color.
func (r Round) IsCorrect(c Color) bool {
	return c != NoColor && c == r.DisplayColor
}

func (r Round) clone() Round {
	opts := make([]Color, len(r.Options))
	copy(opts, r.Options)
	r.Options = opts
	return r
}

// RoundGenerator builds rounds from a ColorSet.
type RoundGenerator struct {
	colors *ColorSet
	seq    uint64
}

// NewRoundGenerator returns a generator over colors.
func NewRoundGenerator(colors *ColorSet) *RoundGenerator {
	return &RoundGenerator{colors: colors}
}

// Colors returns the underlying palette.
func (g *RoundGenerator) Colors() *ColorSet {
	return g.colors
}

// NextRound draws text and ink colors independently (they may match) and
// shuffles the ink color in with three distinct distractors.
func (g *RoundGenerator) NextRound() (Round, error) {
	text := g.colors.Sample()
	display := g.colors.Sample()
	others, err := g.colors.SampleExcluding(display, OptionsPerRound-1)
	if err != nil {
		return Round{}, fmt.Errorf("build options: %w", err)
	}
	options := make([]Color, 0, OptionsPerRound)
	options = append(options, display)
	options = append(options, others...)
	g.colors.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	g.seq++
	return Round{
		Seq:          g.seq,
		TextColor:    text,
		DisplayColor: display,
		Options:      options,
	}, nil
}
