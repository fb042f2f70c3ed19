package result

// Set is an ordered list of matched corpus lines. Position is the only identity a line has.
type Set []string

// OrEmpty returns s, or an empty non-nil Set when s is nil.
// JSON encoding of the result is then always an array, never null.
func (s Set) OrEmpty() Set {
	if s == nil {
		return Set{}
	}
	return s
}

// Truncate returns at most n lines. n <= 0 means no limit.
func (s Set) Truncate(n int) Set {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

// Len returns the number of lines.
func (s Set) Len() int { return len(s) }
