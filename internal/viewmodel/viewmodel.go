package viewmodel

// GamePage holds data for the main game page template.
type GamePage struct {
	Title     string
	SessionID string
	Round     RoundFragment
}

// Option is one answer button.
type Option struct {
	Color string
	Label string
}

// LastResult describes the previous round's outcome.
type LastResult struct {
	Correct  bool
	TimedOut bool
	Delta    int
}

// RoundFragment holds data for the round UI fragment.
type RoundFragment struct {
	SessionID         string
	Phase             string
	Unavailable       bool
	Countdown         int
	Score             int
	SessionRemaining  int
	ProgressPercent   int
	DecisionRemaining int
	RoundSeq          uint64
	Word              string
	InkColor          string
	Options           []Option
	Last              *LastResult
	RoundKey          string
}

// RoundState is the JSON form of the current round.
type RoundState struct {
	Seq          uint64   `json:"seq"`
	TextColor    string   `json:"textColor"`
	DisplayColor string   `json:"displayColor"`
	Options      []string `json:"options"`
}

// ResultState is the JSON form of a resolved round.
type ResultState struct {
	Round    uint64 `json:"round"`
	Selected string `json:"selected"`
	Correct  bool   `json:"correct"`
	TimedOut bool   `json:"timedOut"`
	Delta    int    `json:"delta"`
	Score    int    `json:"score"`
}

// State is the JSON snapshot served by the state endpoint and pushed over websockets.
type State struct {
	SessionID         string       `json:"sessionId"`
	Phase             string       `json:"phase"`
	Unavailable       bool         `json:"unavailable"`
	Countdown         int          `json:"countdown"`
	Score             int          `json:"score"`
	SessionRemaining  int          `json:"sessionRemaining"`
	SessionDuration   int          `json:"sessionDuration"`
	Progress          float64      `json:"progress"`
	DecisionRemaining int          `json:"decisionRemaining"`
	DecisionDuration  int          `json:"decisionDuration"`
	Round             *RoundState  `json:"round,omitempty"`
	Last              *ResultState `json:"last,omitempty"`
}

// SessionSummary is one row of the home page session list.
type SessionSummary struct {
	ID    string
	Phase string
	Score int
}

// HomePage holds data for the landing page.
type HomePage struct {
	Title    string
	Sessions []SessionSummary
}
