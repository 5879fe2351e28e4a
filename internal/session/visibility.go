package session

// Mode is the panel mode a session was opened in.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Visibility describes the header actions of the panel.
type Visibility struct {
	SaveVisible    bool
	SaveEnabled    bool
	OptionsVisible bool
}

// NextVisibility derives header actions from the session mode and dirtiness.
// In edit mode exactly one of save and options is shown; in create mode save
// is the only action. Save is never enabled while a request is outstanding.
func NextVisibility(mode Mode, dirty, saveInFlight bool) Visibility {
	if mode == ModeCreate {
		return Visibility{SaveVisible: true, SaveEnabled: !saveInFlight}
	}
	return Visibility{
		SaveVisible:    dirty,
		SaveEnabled:    dirty && !saveInFlight,
		OptionsVisible: !dirty,
	}
}
