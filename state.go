package livy

import (
	"encoding/json"
	"fmt"

	"github.com/kjmrknsn/livy-go/utils"
)

// The session, session-kind and statement enumerations are closed sets:
// each variant round-trips losslessly through its wire tag, and decoding
// an unrecognized tag is an error, never a silent default.

// SessionState is the lifecycle state of an interactive session.
type SessionState int

const (
	SessionNotStarted SessionState = iota
	SessionStarting
	SessionIdle
	SessionBusy
	SessionShuttingDown
	SessionError
	SessionDead
	SessionSuccess
)

var sessionStateTags = utils.NewBiMap(map[SessionState]string{
	SessionNotStarted:   "not_started",
	SessionStarting:     "starting",
	SessionIdle:         "idle",
	SessionBusy:         "busy",
	SessionShuttingDown: "shutting_down",
	SessionError:        "error",
	SessionDead:         "dead",
	SessionSuccess:      "success",
})

// String returns the wire tag of the state.
func (s SessionState) String() string {
	if tag, ok := sessionStateTags.Lookup(s); ok {
		return tag
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// MarshalJSON implements json.Marshaler.
func (s SessionState) MarshalJSON() ([]byte, error) {
	tag, ok := sessionStateTags.Lookup(s)
	if !ok {
		return nil, fmt.Errorf("livy: unknown session state %d", int(s))
	}
	return json.Marshal(tag)
}

// UnmarshalJSON implements json.Unmarshaler. Unrecognized tags are rejected.
func (s *SessionState) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	state, ok := sessionStateTags.RLookup(tag)
	if !ok {
		return fmt.Errorf("livy: unknown session state %q", tag)
	}
	*s = state
	return nil
}

// SessionKind is the execution engine variant a session runs.
type SessionKind int

const (
	KindSpark SessionKind = iota
	KindPyspark
	KindPyspark3
	KindSparkr
)

var sessionKindTags = utils.NewBiMap(map[SessionKind]string{
	KindSpark:    "spark",
	KindPyspark:  "pyspark",
	KindPyspark3: "pyspark3",
	KindSparkr:   "sparkr",
})

// String returns the wire tag of the kind.
func (k SessionKind) String() string {
	if tag, ok := sessionKindTags.Lookup(k); ok {
		return tag
	}
	return fmt.Sprintf("SessionKind(%d)", int(k))
}

// MarshalJSON implements json.Marshaler.
func (k SessionKind) MarshalJSON() ([]byte, error) {
	tag, ok := sessionKindTags.Lookup(k)
	if !ok {
		return nil, fmt.Errorf("livy: unknown session kind %d", int(k))
	}
	return json.Marshal(tag)
}

// UnmarshalJSON implements json.Unmarshaler. Unrecognized tags are rejected.
func (k *SessionKind) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	kind, ok := sessionKindTags.RLookup(tag)
	if !ok {
		return fmt.Errorf("livy: unknown session kind %q", tag)
	}
	*k = kind
	return nil
}

// StatementState is the lifecycle state of a statement within a session.
type StatementState int

const (
	StatementWaiting StatementState = iota
	StatementRunning
	StatementAvailable
	StatementError
	StatementCancelling
	StatementCancelled
)

var statementStateTags = utils.NewBiMap(map[StatementState]string{
	StatementWaiting:    "waiting",
	StatementRunning:    "running",
	StatementAvailable:  "available",
	StatementError:      "error",
	StatementCancelling: "cancelling",
	StatementCancelled:  "cancelled",
})

// String returns the wire tag of the state.
func (s StatementState) String() string {
	if tag, ok := statementStateTags.Lookup(s); ok {
		return tag
	}
	return fmt.Sprintf("StatementState(%d)", int(s))
}

// MarshalJSON implements json.Marshaler.
func (s StatementState) MarshalJSON() ([]byte, error) {
	tag, ok := statementStateTags.Lookup(s)
	if !ok {
		return nil, fmt.Errorf("livy: unknown statement state %d", int(s))
	}
	return json.Marshal(tag)
}

// UnmarshalJSON implements json.Unmarshaler. Unrecognized tags are rejected.
func (s *StatementState) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	state, ok := statementStateTags.RLookup(tag)
	if !ok {
		return fmt.Errorf("livy: unknown statement state %q", tag)
	}
	*s = state
	return nil
}
