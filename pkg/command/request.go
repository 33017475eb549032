// Package command maps text commands onto gait maneuvers.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Fixed responses.
const (
	ResponseNotFound  = "Command not found!"
	ResponseMalformed = "ERROR: invalid command format"
	ResponseCancelled = "ERROR: request cancelled"
)

// ErrUnknownCommand is returned for a token missing from the command table.
var ErrUnknownCommand = errors.New("unknown command")

// MalformedRequestError reports a line that is not "<token> [iteration]".
type MalformedRequestError struct {
	Line   string
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request %q: %s", e.Line, e.Reason)
}

// Request is one parsed command line.
type Request struct {
	Command   string
	Iteration int
}

func (r Request) String() string {
	return fmt.Sprintf("%s %d", r.Command, r.Iteration)
}

// ParseRequest parses "<token> [iteration]". The iteration defaults to 1
// and must be a positive integer.
func ParseRequest(line string) (Request, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		return Request{Command: fields[0], Iteration: 1}, nil
	case 2:
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return Request{}, &MalformedRequestError{Line: line, Reason: "iteration is not a number"}
		}
		if n < 1 {
			return Request{}, &MalformedRequestError{Line: line, Reason: "iteration must be at least 1"}
		}
		return Request{Command: fields[0], Iteration: n}, nil
	default:
		return Request{}, &MalformedRequestError{Line: line, Reason: fmt.Sprintf("want 1 or 2 fields, got %d", len(fields))}
	}
}
