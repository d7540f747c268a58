// Package task defines the change-request task model and its decoder.
//
// Tasks originate on an external task board; wifisync reads four logical
// fields per task and writes exactly one status transition (open →
// complete). A task source adapter maps its transport-specific payload into
// the fixed Raw record, and Decode validates that record once. Nothing past
// the decoder accesses task fields dynamically.
package task

import (
	"context"
	"strings"

	"github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/mac"
)

// Kind is the operation a task requests on the MAC filter.
type Kind string

const (
	// Add requests adding a MAC address to an SSID's filter.
	Add Kind = "add"
	// Delete requests removing a MAC address from an SSID's filter.
	Delete Kind = "delete"
)

// Title tokens that identify the operation. Matching is case-sensitive
// exact substring.
const (
	addToken    = "ADDMAC"
	deleteToken = "DELMAC"
)

// Raw is the fixed field record a task source adapter produces for one
// open task. The adapter does any transport-specific splitting; Decode
// only validates.
type Raw struct {
	// ID identifies the task on the task board.
	ID string
	// Title carries the operation token (ADDMAC or DELMAC).
	Title string
	// MACField carries the MAC address text.
	MACField string
	// NetworkField carries the SSID name.
	NetworkField string
	// CommentField optionally names the device owner, kept in the mirror.
	CommentField string
}

// Task is a decoded, validated change request.
type Task struct {
	ID      string
	Kind    Kind
	Addr    mac.Address
	Network string
	Comment string
}

// Source lists open tasks and marks them complete on the task board.
type Source interface {
	// ListOpen returns the raw field sets of all open tasks. Tasks the
	// source no longer reports as open are never re-processed.
	ListOpen(ctx context.Context) ([]Raw, error)
	// MarkComplete transitions one task to complete.
	MarkComplete(ctx context.Context, id string) error
}

// Decode validates a raw field set into a Task. Any failure yields a
// MalformedTaskError naming the task and the offending field; the caller
// records it against that task and moves on.
func Decode(raw Raw) (*Task, error) {
	var kind Kind
	switch {
	case strings.Contains(raw.Title, addToken):
		kind = Add
	case strings.Contains(raw.Title, deleteToken):
		kind = Delete
	default:
		return nil, errors.NewMalformedTaskError(raw.ID, "title", "no ADDMAC or DELMAC token in "+strings.TrimSpace(raw.Title))
	}

	addr, err := mac.Parse(strings.TrimSpace(raw.MACField))
	if err != nil {
		return nil, errors.NewMalformedTaskError(raw.ID, "mac", err.Error())
	}

	network := strings.TrimSpace(raw.NetworkField)
	if network == "" {
		return nil, errors.NewMalformedTaskError(raw.ID, "network", "empty network name")
	}

	return &Task{
		ID:      raw.ID,
		Kind:    kind,
		Addr:    addr,
		Network: network,
		Comment: strings.TrimSpace(raw.CommentField),
	}, nil
}
