package server

// FrameType identifies the kind of a wire frame.
type FrameType string

const (
	// FrameChat carries one chat line from the client into the dispatchers.
	FrameChat FrameType = "chat"
	// FrameControl carries an out-of-band game command (start, end, roster).
	FrameControl FrameType = "control"
	// FrameAnnounce carries a game announcement back to all clients.
	FrameAnnounce FrameType = "announce"
	// FrameError reports a rejected frame back to the sender.
	FrameError FrameType = "error"
)

// Frame is the single JSON envelope exchanged over the websocket. Fields are
// populated according to Type.
type Frame struct {
	Type FrameType `json:"type"`

	// chat fields
	Channel string `json:"channel,omitempty"`
	Sender  string `json:"sender,omitempty"`
	Text    string `json:"text,omitempty"`

	// control and announce fields
	Game    string   `json:"game,omitempty"`
	Action  string   `json:"action,omitempty"`
	Target  string   `json:"target,omitempty"`
	Members []string `json:"members,omitempty"`
}

// Control actions accepted on FrameControl frames.
const (
	ActionStart    = "start"
	ActionEnd      = "end"
	ActionReset    = "reset"
	ActionRoster   = "roster"
	ActionDealer   = "dealer"
	ActionTeamMode = "team_mode"
	ActionAssign   = "assign"
)

// NewAnnounceFrame builds the broadcast frame for a game announcement.
func NewAnnounceFrame(gameName, text string) *Frame {
	return &Frame{Type: FrameAnnounce, Game: gameName, Text: text}
}

// NewErrorFrame builds an error frame for the offending sender.
func NewErrorFrame(text string) *Frame {
	return &Frame{Type: FrameError, Text: text}
}
