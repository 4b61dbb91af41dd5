package types

// AppendParameters derives a copy of the method with added appended to its
// parameter list. For parameterized methods the erasure is rebuilt with the
// raw forms of added, so dispatch on erased signatures keeps matching. The
// operation is total: either both descriptors are produced or neither is.
//
// The result is interned, so appending nothing may return id itself; callers
// must compare results structurally via IDs of fresh copies, never assume
// a new ID.
func (in *Interner) AppendParameters(id MethodID, added []TypeID) (MethodID, error) {
	m, ok := in.Method(id)
	if !ok {
		return NoMethodID, malformed("", "copy of unresolved method %d", id)
	}
	owner, _ := in.Lookup(m.Owner)
	subject := owner.Name + "." + m.Name
	for i, p := range added {
		if err := in.validateArg(subject, p); err != nil {
			return NoMethodID, malformed(subject, "added parameter %d: %v", i, err)
		}
	}

	erasure := NoMethodID
	if m.Parameterized {
		base, ok := in.Method(m.Erasure)
		if !ok {
			return NoMethodID, malformed(subject, "parameterized method without an erasure")
		}
		rawAdded := make([]TypeID, len(added))
		for i, p := range added {
			rawAdded[i] = in.RawOf(p)
		}
		erasureSpec := base.Spec()
		erasureSpec.Params = appendTypeIDs(base.Params, rawAdded)
		var err error
		erasure, err = in.InternMethod(erasureSpec)
		if err != nil {
			return NoMethodID, err
		}
	}

	spec := m.Spec()
	spec.Params = appendTypeIDs(m.Params, added)
	spec.Erasure = erasure
	return in.InternMethod(spec)
}
