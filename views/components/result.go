package components

import (
	"fmt"

	"colortap/internal/viewmodel"
)

func sessionPath(id, action string) string {
	return "/sessions/" + id + "/" + action
}

func resultKind(r viewmodel.LastResult) string {
	switch {
	case r.Correct:
		return "correct"
	case r.TimedOut:
		return "timeout"
	default:
		return "wrong"
	}
}

func resultLabel(r viewmodel.LastResult) string {
	switch {
	case r.Correct:
		return "Correct"
	case r.TimedOut:
		return "Too slow"
	default:
		return "Wrong"
	}
}

func signed(n int) string {
	return fmt.Sprintf("%+d", n)
}
