package handlers

import (
	"math"
	"strconv"
	"strings"

	"colortap/internal/game"
	"colortap/internal/viewmodel"
)

func buildRoundFragment(sessionID string, snap game.Snapshot) viewmodel.RoundFragment {
	data := viewmodel.RoundFragment{
		SessionID:         sessionID,
		Phase:             snap.Phase.String(),
		Unavailable:       snap.Unavailable,
		Countdown:         snap.Countdown,
		Score:             snap.Score,
		SessionRemaining:  snap.SessionRemaining,
		ProgressPercent:   int(math.Round(snap.Progress * 100)),
		DecisionRemaining: snap.DecisionRemaining,
		RoundKey:          buildRoundKey(snap),
	}
	if round := snap.Round; round != nil {
		data.RoundSeq = round.Seq
		data.Word = round.TextColor.String()
		data.InkColor = round.DisplayColor.String()
		data.Options = make([]viewmodel.Option, 0, len(round.Options))
		for _, c := range round.Options {
			data.Options = append(data.Options, viewmodel.Option{Color: c.String(), Label: c.String()})
		}
	}
	if last := snap.Last; last != nil {
		data.Last = &viewmodel.LastResult{
			Correct:  last.Correct,
			TimedOut: last.TimedOut,
			Delta:    last.Delta,
		}
	}
	return data
}

func buildRoundKey(snap game.Snapshot) string {
	var seq uint64
	if snap.Round != nil {
		seq = snap.Round.Seq
	}
	return strings.Join([]string{
		snap.Phase.String(),
		strconv.FormatUint(seq, 10),
		strconv.Itoa(snap.Countdown),
		strconv.Itoa(snap.SessionRemaining),
		strconv.Itoa(snap.DecisionRemaining),
		strconv.Itoa(snap.Score),
	}, "|")
}

func buildState(sessionID string, snap game.Snapshot) viewmodel.State {
	state := viewmodel.State{
		SessionID:         sessionID,
		Phase:             snap.Phase.String(),
		Unavailable:       snap.Unavailable,
		Countdown:         snap.Countdown,
		Score:             snap.Score,
		SessionRemaining:  snap.SessionRemaining,
		SessionDuration:   snap.SessionDuration,
		Progress:          snap.Progress,
		DecisionRemaining: snap.DecisionRemaining,
		DecisionDuration:  snap.DecisionDuration,
	}
	if round := snap.Round; round != nil {
		state.Round = &viewmodel.RoundState{
			Seq:          round.Seq,
			TextColor:    round.TextColor.String(),
			DisplayColor: round.DisplayColor.String(),
			Options:      colorNames(round.Options),
		}
	}
	if last := snap.Last; last != nil {
		res := buildResult(*last)
		state.Last = &res
	}
	return state
}

func buildResult(res game.Resolution) viewmodel.ResultState {
	return viewmodel.ResultState{
		Round:    res.Round.Seq,
		Selected: res.Selected.String(),
		Correct:  res.Correct,
		TimedOut: res.TimedOut,
		Delta:    res.Delta,
		Score:    res.Score,
	}
}

func colorNames(colors []game.Color) []string {
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		out = append(out, c.String())
	}
	return out
}
