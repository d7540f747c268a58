// Package macfile reads and writes the MAC address mirror file.
//
// The mirror file is a line-oriented UTF-8 text file shadowing the
// controller's filter contents, kept for disaster recovery. Each line is
// either a comment/blank pass-through or one entry of the form
//
//	aa:bb:cc:dd:ee:ff;Guest-WiFi   # Jane Doe
//
// where the ";network" suffix scopes the entry to one SSID and the inline
// comment usually names the device owner. Entries without the suffix come
// from the legacy single-SSID layout and are resolved against a configured
// default network, or rejected when none is configured.
//
// Pass-through lines are preserved byte-for-byte in their original order;
// mutations only ever append or remove entry lines for the touched
// (mac, network) pair.
package macfile

import (
	"os"
	"strings"

	"github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/mac"
)

// fileHeader is written at the top of a freshly created mirror file.
const fileHeader = `# -----------------------------------------------------------------------------
# MAC address mirror file
#  * MAC addresses must have the format hh:hh:hh:hh:hh:hh
#  * MAC addresses must start in col 1, one MAC per line
#  * a ";network" suffix on the MAC scopes the entry to that SSID
#  * line comments are allowed (starting with a # in col 1)
#  * inline comments (after the MAC, separated with a #) are allowed as well
# -----------------------------------------------------------------------------
`

// Entry is one MAC address line of the mirror file, or the addressing
// information of one task. Immutable once constructed.
type Entry struct {
	Addr    mac.Address
	Network string
	Comment string
}

// String serializes the entry in mirror-file form. The network suffix is
// always written, even for entries that were parsed from the legacy layout.
func (e Entry) String() string {
	s := e.Addr.String() + ";" + e.Network
	if e.Comment != "" {
		s += "   # " + e.Comment
	}
	return s
}

// line is one mirror-file line: either a pass-through (entry == nil) whose
// raw text is preserved exactly, or a serialized entry.
type line struct {
	raw   string
	entry *Entry
}

// ParseLine parses one line of mirror-file text. It returns the parsed
// entry, or nil for a pass-through line (blank or full-line comment).
// defaultNetwork resolves entries lacking the ";network" suffix; when it is
// empty such entries are malformed. number is the 1-based line number used
// in error messages. Parsing is line-local.
func ParseLine(text string, number int, defaultNetwork string) (*Entry, error) {
	trimmed := strings.TrimLeft(text, " \t")
	if trimmed == "" || trimmed[0] == '#' {
		return nil, nil
	}

	// First token runs to the first blank; everything after it may only be
	// blanks or an inline comment.
	token := trimmed
	rest := ""
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		token, rest = trimmed[:i], trimmed[i:]
	}

	comment := ""
	rest = strings.TrimLeft(rest, " \t")
	switch {
	case rest == "":
	case rest[0] == '#':
		comment = strings.TrimSpace(rest[1:])
	default:
		return nil, errors.NewMalformedEntryError(text, number, "unexpected trailing content")
	}

	macText := token
	network := defaultNetwork
	if i := strings.IndexByte(token, ';'); i >= 0 {
		macText, network = token[:i], token[i+1:]
	}
	if network == "" {
		return nil, errors.NewMalformedEntryError(text, number, "entry has no network and no default network is configured")
	}

	addr, err := mac.Parse(macText)
	if err != nil {
		return nil, errors.NewMalformedEntryError(text, number, err.Error())
	}

	return &Entry{Addr: addr, Network: network, Comment: comment}, nil
}

// File is the in-memory mirror: an ordered sequence of lines, loaded once,
// mutated through Add/Remove, and written back with Flush. Single-writer:
// nothing in here guards against a second process mutating the same file.
type File struct {
	path           string
	defaultNetwork string
	lines          []line
	malformed      []error
	fresh          bool
	dirty          bool
}

// Option configures a File.
type Option func(*File)

// WithDefaultNetwork sets the network assigned to legacy entries that lack
// the ";network" suffix. Without it such entries are reported malformed.
func WithDefaultNetwork(network string) Option {
	return func(f *File) { f.defaultNetwork = network }
}

// Load reads the mirror file at path. A missing file yields an empty File
// that receives the documentation header on first Flush. Unparsable lines
// are preserved untouched and reported via Malformed; they never abort the
// load.
func Load(path string, opts ...Option) (*File, error) {
	f := &File{path: path}
	for _, opt := range opts {
		opt(f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			f.fresh = true
			return f, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	if text == "" && len(data) == 0 {
		return f, nil
	}
	for i, raw := range strings.Split(text, "\n") {
		entry, err := ParseLine(raw, i+1, f.defaultNetwork)
		if err != nil {
			f.malformed = append(f.malformed, err)
			f.lines = append(f.lines, line{raw: raw})
			continue
		}
		f.lines = append(f.lines, line{raw: raw, entry: entry})
	}
	return f, nil
}

// Path returns the on-disk location of the mirror file.
func (f *File) Path() string {
	return f.path
}

// Malformed returns the parse failures encountered during Load. The
// offending lines stay in the file untouched.
func (f *File) Malformed() []error {
	return f.malformed
}

// Entries returns all parsed entries in file order.
func (f *File) Entries() []Entry {
	var out []Entry
	for _, l := range f.lines {
		if l.entry != nil {
			out = append(out, *l.entry)
		}
	}
	return out
}

// Members returns the addresses of all entries scoped to the given network,
// in file order. Used by the restore command to rebuild a filter.
func (f *File) Members(network string) []mac.Address {
	var out []mac.Address
	for _, l := range f.lines {
		if l.entry != nil && l.entry.Network == network {
			out = append(out, l.entry.Addr)
		}
	}
	return out
}

// Add appends the entry at end of file unless an entry with the same
// (mac, network) pair already exists. It reports whether a change occurred.
func (f *File) Add(e Entry) bool {
	for _, l := range f.lines {
		if l.entry != nil && l.entry.Addr == e.Addr && l.entry.Network == e.Network {
			return false
		}
	}
	entry := e
	f.lines = append(f.lines, line{raw: entry.String(), entry: &entry})
	f.dirty = true
	return true
}

// Remove deletes the first entry line matching the (mac, network) pair.
// A missing entry is a no-op, not an error, so replays stay idempotent.
func (f *File) Remove(addr mac.Address, network string) bool {
	for i, l := range f.lines {
		if l.entry != nil && l.entry.Addr == addr && l.entry.Network == network {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
			f.dirty = true
			return true
		}
	}
	return false
}

// Flush writes the line sequence back to disk. Untouched lines are written
// exactly as they were read. Flushing an unmodified, existing file is a
// no-op.
func (f *File) Flush() error {
	if !f.dirty && !f.fresh {
		return nil
	}

	var b strings.Builder
	if f.fresh {
		b.WriteString(fileHeader)
	}
	for _, l := range f.lines {
		b.WriteString(l.raw)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(f.path, []byte(b.String()), 0o644); err != nil {
		return errors.NewMirrorWriteError(f.path, err)
	}
	f.fresh = false
	f.dirty = false
	return nil
}
