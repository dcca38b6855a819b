package domain

type AlarmAction string

const (
	AlarmStart AlarmAction = "start"
	AlarmStop  AlarmAction = "stop"
)

// AlarmCommand drives the on-site sounder daemons. A start command names the
// sound asset to play and whether to loop it; a stop command silences
// whatever is playing.
type AlarmCommand struct {
	Action    AlarmAction `json:"action"`
	AlertType AlertType   `json:"alert_type,omitempty"`
	Sound     string      `json:"sound,omitempty"`
	Loop      bool        `json:"loop,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Toast is a short user-facing notification line.
type Toast struct {
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Timestamp int64  `json:"timestamp"`
}

const (
	ToastInfo    = "info"
	ToastWarning = "warning"
	ToastError   = "error"
)
