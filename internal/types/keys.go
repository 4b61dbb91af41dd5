package types

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type typeKey struct {
	Kind  Kind
	Name  string
	Owner string
	Args  string
	Elem  TypeID
}

type methodKey struct {
	Owner         TypeID
	Name          string
	Params        string
	Return        TypeID
	TypeParams    string
	Flags         MethodFlags
	Visibility    Visibility
	Parameterized bool
	Erasure       MethodID
}

// canonicalName normalises identifiers so canonically equivalent spellings
// intern to one descriptor.
func canonicalName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// encodeIDs packs an ordered ID list into a comparable key fragment.
func encodeIDs(ids []TypeID) string {
	if len(ids) == 0 {
		return ""
	}
	buf := make([]byte, 4*len(ids))
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(id))
	}
	return string(buf)
}

func cloneTypeArgs(args []TypeID) []TypeID {
	if len(args) == 0 {
		return nil
	}
	result := make([]TypeID, len(args))
	copy(result, args)
	return result
}

func appendTypeIDs(base, extra []TypeID) []TypeID {
	out := make([]TypeID, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
