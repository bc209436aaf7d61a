package types

// Mode selects one of three mutually exclusive conversation execution
// strategies. Switching modes clears the transcript but not the action-item
// store.
type Mode string

const (
	ModeClassic    Mode = "classic"
	ModePlanning   Mode = "planning"
	ModeAutonomous Mode = "autonomous"
)

func NormalizeMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case ModeClassic, ModePlanning, ModeAutonomous:
		return Mode(raw), true
	case "":
		return ModeClassic, true
	default:
		return "", false
	}
}
