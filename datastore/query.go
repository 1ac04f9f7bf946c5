package datastore

import "bytes"

// Query describes a bounded range scan over a store. The range is
// [Start, End): Start is inclusive, End exclusive, compared
// byte-lexicographically. A nil Start means the beginning of the keyspace,
// a nil End means the end of it.
type Query struct {
	Start []byte
	End   []byte

	// Reverse iterates from End towards Start.
	Reverse bool

	// Limit bounds the number of entries produced. Zero means no limit.
	Limit int
}

// Validate reports whether q describes a well-formed range.
func (q Query) Validate() error {
	if q.Limit < 0 {
		return ErrInvalidQuery
	}
	if q.Start != nil && q.End != nil && bytes.Compare(q.Start, q.End) > 0 {
		return ErrInvalidQuery
	}
	return nil
}

// Contains reports whether key falls inside q's range.
func (q Query) Contains(key []byte) bool {
	if q.Start != nil && bytes.Compare(key, q.Start) < 0 {
		return false
	}
	if q.End != nil && bytes.Compare(key, q.End) >= 0 {
		return false
	}
	return true
}

// PrefixQuery builds a query spanning exactly the keys that start with
// prefix. A nil or empty prefix spans the whole keyspace.
func PrefixQuery(prefix []byte) Query {
	if len(prefix) == 0 {
		return Query{}
	}
	return Query{Start: prefix, End: PrefixEnd(prefix)}
}

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, or nil if no such key exists (the prefix is all 0xff bytes).
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)

	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
