package mizuchi

import "fmt"

// A State bundles the data of one multipart request: the request ID, the
// action name, the raw schema bytes and the raw command bytes. States are
// immutable and discarded with the request.
type State struct {
	ID      string
	Action  string
	Schemas []byte
	Command []byte

	log RequestLogger
}

// newState parses a multipart request into a state. The message must have
// exactly four frames: request ID, action name, schema bytes and command
// bytes.
func newState(frames [][]byte) (*State, error) {
	if len(frames) != 4 {
		return nil, fmt.Errorf("invalid multipart request: got %d frames, want 4", len(frames))
	}
	rid := string(frames[0])
	return &State{
		ID:      rid,
		Action:  string(frames[1]),
		Schemas: frames[2],
		Command: frames[3],
		log:     newRequestLogger(rid),
	}, nil
}

// Logger returns the logger tagged with the request ID.
func (s *State) Logger() RequestLogger { return s.log }
