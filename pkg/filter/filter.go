// Package filter provides the in-memory model of one SSID's MAC allow-list.
// Every Set is bound to exactly one network name at construction, so a
// caller can never apply a mutation to the wrong SSID by accident.
package filter

import (
	"sort"

	"github.com/efgnet/wifisync/pkg/mac"
)

// Set holds the MAC filter membership for a single network. Add and Remove
// are idempotent: re-adding a present address or removing an absent one is
// a no-op, and both report whether the membership actually changed.
type Set struct {
	network string
	members map[mac.Address]struct{}
}

// New creates an empty Set bound to the given network name.
func New(network string) *Set {
	return &Set{
		network: network,
		members: make(map[mac.Address]struct{}),
	}
}

// FromMembers creates a Set bound to the given network with an initial
// membership. Duplicates in the input are absorbed.
func FromMembers(network string, members []mac.Address) *Set {
	s := New(network)
	for _, m := range members {
		s.members[m] = struct{}{}
	}
	return s
}

// Network returns the network name this set is bound to.
func (s *Set) Network() string {
	return s.network
}

// Contains reports whether the address is in the filter.
func (s *Set) Contains(addr mac.Address) bool {
	_, ok := s.members[addr]
	return ok
}

// Add inserts the address and reports whether the membership changed.
func (s *Set) Add(addr mac.Address) bool {
	if _, ok := s.members[addr]; ok {
		return false
	}
	s.members[addr] = struct{}{}
	return true
}

// Remove deletes the address and reports whether the membership changed.
func (s *Set) Remove(addr mac.Address) bool {
	if _, ok := s.members[addr]; !ok {
		return false
	}
	delete(s.members, addr)
	return true
}

// ReplaceAll overwrites the entire membership. Only the explicit restore
// command path uses this; ADD/DELETE task processing never does.
func (s *Set) ReplaceAll(members []mac.Address) {
	s.members = make(map[mac.Address]struct{}, len(members))
	for _, m := range members {
		s.members[m] = struct{}{}
	}
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.members)
}

// Members returns a sorted snapshot of the membership. Sorting keeps
// transport payloads and log output stable across runs.
func (s *Set) Members() []mac.Address {
	out := make([]mac.Address, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
