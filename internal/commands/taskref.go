package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ErrConversationIDRequired indicates no conversation id was provided.
var ErrConversationIDRequired = errors.New("conversation id required")

// ParseTaskID parses a single task id from the first argument.
// Ids are positive integers, optionally written with a leading '#'.
func ParseTaskID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskIDRequired
	}
	return parseID(args[0], "task")
}

// ParseTaskIDs parses every argument as a task id. Duplicates are dropped
// and order is preserved.
func ParseTaskIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, ErrTaskIDRequired
	}
	seen := make(map[int]bool, len(args))
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := parseID(a, "task")
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ParseConversationID parses a conversation id from the first argument.
func ParseConversationID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrConversationIDRequired
	}
	return parseID(args[0], "conversation")
}

func parseID(raw, kind string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 || s != strconv.Itoa(id) {
		return 0, fmt.Errorf("invalid %s id: %s", kind, raw)
	}
	return id, nil
}
