package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// OptionsPerRound is the number of swatches offered each round.
const OptionsPerRound = 4

var (
	// ErrInsufficientColorPool means the palette cannot supply OptionsPerRound distinct options.
	ErrInsufficientColorPool = errors.New("insufficient color pool")
	// ErrInvalidColor means a palette entry is empty or duplicated.
	ErrInvalidColor = errors.New("invalid color")
)

// Color names a palette entry. The empty Color is never part of a palette;
// it stands for "no answer" when a round times out.
type Color string

// NoColor is the answer recorded when the decision deadline passes untouched.
const NoColor Color = ""

func (c Color) String() string {
	return string(c)
}

// DefaultPalette is the stock vocabulary.
var DefaultPalette = []Color{"red", "blue", "green", "yellow", "purple", "orange", "pink"}

// Source is the randomness a ColorSet consumes. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewSource returns a time-seeded source.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// ColorSet is a fixed palette plus the sampling functions over it.
type ColorSet struct {
	colors []Color
	rng    Source
}

// NewColorSet validates the palette and binds it to rng.
func NewColorSet(colors []Color, rng Source) (*ColorSet, error) {
	if len(colors) <= OptionsPerRound {
		return nil, fmt.Errorf("%w: palette has %d colors, need more than %d", ErrInsufficientColorPool, len(colors), OptionsPerRound)
	}
	seen := make(map[Color]struct{}, len(colors))
	out := make([]Color, 0, len(colors))
	for _, c := range colors {
		c = Color(strings.ToLower(strings.TrimSpace(string(c))))
		if c == NoColor {
			return nil, fmt.Errorf("%w: empty color", ErrInvalidColor)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: duplicate color %q", ErrInvalidColor, c)
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if rng == nil {
		rng = NewSource()
	}
	return &ColorSet{colors: out, rng: rng}, nil
}

// Colors returns a copy of the palette.
func (s *ColorSet) Colors() []Color {
	out := make([]Color, len(s.colors))
	copy(out, s.colors)
	return out
}

// Contains reports whether c is in the palette.
func (s *ColorSet) Contains(c Color) bool {
	for _, p := range s.colors {
		if p == c {
			return true
		}
	}
	return false
}

// Sample returns one color chosen uniformly at random.
func (s *ColorSet) Sample() Color {
	return s.colors[s.rng.Intn(len(s.colors))]
}

// SampleExcluding draws count distinct colors uniformly, without replacement, from the palette minus exclude.
func (s *ColorSet) SampleExcluding(exclude Color, count int) ([]Color, error) {
	if count < 0 {
		count = 0
	}
	pool := make([]Color, 0, len(s.colors))
	for _, c := range s.colors {
		if c != exclude {
			pool = append(pool, c)
		}
	}
	if count > len(pool) {
		return nil, fmt.Errorf("%w: want %d colors, %d available", ErrInsufficientColorPool, count, len(pool))
	}
	// partial Fisher-Yates: the first count slots end up a uniform sample
	for i := 0; i < count; i++ {
		j := i + s.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count:count], nil
}
