package zipcore

// Archive is the result of a completed Archive FSM run: the whole central
// directory decoded into normalized Entry values plus archive-level
// metadata.
type Archive struct {
	// Size is the archive's total byte length, as supplied by the caller.
	Size int64

	Encoding Encoding

	// Comment is the decoded archive comment. A zero-length comment is
	// distinct from no comment at all only at the wire level; here it is
	// always a (possibly empty) string.
	Comment string

	Entries []*Entry

	// globalOffset is not set by the fsm package and stays zero. The
	// non-zip prefix length (e.g. a self-extracting stub) is instead already
	// added into every Entry's HeaderOffset.
	globalOffset int64
}

// ByName returns the first entry with the given name, or nil if none
// matches. Archives may legally contain duplicate names; callers that care
// about every match should scan Entries directly.
func (a *Archive) ByName(name string) *Entry {
	for _, e := range a.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}
