package databind

import (
	"strconv"
	"strings"
)

// AddressEntry is one step of a data address: either a struct member
// name or an array index, never both.
type AddressEntry struct {
	Name  string
	Index int
}

// NameEntry creates a member-name entry.
func NameEntry(name string) AddressEntry {
	return AddressEntry{Name: name, Index: -1}
}

// IndexEntry creates an array-index entry.
func IndexEntry(index int) AddressEntry {
	return AddressEntry{Index: index}
}

// IsIndex reports whether the entry addresses an array index.
func (e AddressEntry) IsIndex() bool {
	return e.Name == ""
}

// Address is a structured path into a graph of bound host values,
// parsed from strings like "a.b[2].c". An empty Address is invalid.
type Address []AddressEntry

// String renders the address back to its string form, for logging.
func (a Address) String() string {
	var sb strings.Builder
	for i, entry := range a {
		if entry.IsIndex() {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(entry.Index))
			sb.WriteByte(']')
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(entry.Name)
	}
	return sb.String()
}

// ParseAddress converts a dotted/bracketed path string into an
// Address. Parsing is all-or-nothing: any malformed input yields an
// empty Address, never a partial one. Each dot-separated segment must
// begin with a name; each bracket group must be numeric and
// non-negative.
func ParseAddress(addressStr string) Address {
	if addressStr == "" {
		return nil
	}
	segments := strings.Split(addressStr, ".")
	address := make(Address, 0, len(segments)*2)

	for _, segment := range segments {
		open := strings.IndexByte(segment, '[')
		if open == 0 || segment == "" {
			return nil
		}
		if open < 0 {
			address = append(address, NameEntry(segment))
			continue
		}
		address = append(address, NameEntry(segment[:open]))

		rest := segment[open:]
		for rest != "" {
			if rest[0] != '[' {
				return nil
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil
			}
			index, err := strconv.Atoi(rest[1:end])
			if err != nil || index < 0 {
				return nil
			}
			address = append(address, IndexEntry(index))
			rest = rest[end+1:]
		}
	}

	return address
}
