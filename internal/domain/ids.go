package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// VirtualIDPrefix marks client-assigned placeholder ids of records that are not persisted yet
const VirtualIDPrefix = "virtual-"

// NodeID identifies a step or product choice inside a submitted configurator graph.
// It is either a persisted id or a virtual placeholder such as "virtual-3".
type NodeID struct {
	ID      int64
	Virtual string
}

// PersistedID wraps a database id
func PersistedID(id int64) NodeID {
	return NodeID{ID: id}
}

// VirtualID builds the placeholder id "virtual-<n>"
func VirtualID(n int) NodeID {
	return NodeID{Virtual: VirtualIDPrefix + strconv.Itoa(n)}
}

// IsPersisted reports whether the id refers to a stored record
func (n NodeID) IsPersisted() bool {
	return n.ID > 0
}

// IsVirtual reports whether the id is a client placeholder
func (n NodeID) IsVirtual() bool {
	return n.ID == 0 && n.Virtual != ""
}

// IsZero reports whether no id was supplied at all
func (n NodeID) IsZero() bool {
	return n.ID == 0 && n.Virtual == ""
}

func (n NodeID) String() string {
	switch {
	case n.IsPersisted():
		return strconv.FormatInt(n.ID, 10)
	case n.IsVirtual():
		return n.Virtual
	default:
		return "new"
	}
}

// MarshalJSON writes persisted ids as numbers, virtual ids as strings and empty ids as null
func (n NodeID) MarshalJSON() ([]byte, error) {
	switch {
	case n.IsPersisted():
		return []byte(strconv.FormatInt(n.ID, 10)), nil
	case n.IsVirtual():
		return json.Marshal(n.Virtual)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, a positive number, a numeric string or a "virtual-<n>" string
func (n *NodeID) UnmarshalJSON(data []byte) error {
	*n = NodeID{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, VirtualIDPrefix) {
			n.Virtual = s
			return nil
		}
		return n.setNumeric(s)
	}

	return n.setNumeric(string(data))
}

func (n *NodeID) setNumeric(s string) error {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	if id < 0 {
		return fmt.Errorf("invalid id %d: must not be negative", id)
	}
	n.ID = id
	return nil
}
