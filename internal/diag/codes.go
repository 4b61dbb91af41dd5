package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Descriptor construction
	DescInfo               Code = 1000
	DescMalformedKey       Code = 1001
	DescUnresolvedType     Code = 1002
	DescDuplicateDecl      Code = 1003
	DescUnresolvedMethod   Code = 1004
	DescBridgeArityChanged Code = 1005

	// Enum classification
	EnumInfo                     Code = 2000
	EnumInvalidCustomValueKind   Code = 2001
	EnumAmbiguousCustomValue     Code = 2002
	EnumDuplicateConstant        Code = 2003
	EnumMissingCustomValueMember Code = 2004
	EnumNotAnEnum                Code = 2005

	// Feed loading
	FeedInfo       Code = 3000
	FeedLoadError  Code = 3001
	FeedValidation Code = 3002
	FeedBadTypeRef Code = 3003

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                  "Unknown error",
	DescInfo:                     "Descriptor information",
	DescMalformedKey:             "Malformed descriptor key",
	DescUnresolvedType:           "Unresolved type reference",
	DescDuplicateDecl:            "Duplicate declaration",
	DescUnresolvedMethod:         "Unresolved method",
	DescBridgeArityChanged:       "Bridge changes erased arity",
	EnumInfo:                     "Enum information",
	EnumInvalidCustomValueKind:   "Invalid custom value kind",
	EnumAmbiguousCustomValue:     "Ambiguous custom value member",
	EnumDuplicateConstant:        "Duplicate enum constant",
	EnumMissingCustomValueMember: "Missing custom value member",
	EnumNotAnEnum:                "Declaration is not an enum",
	FeedInfo:                     "Feed information",
	FeedLoadError:                "Failed to load declaration feed",
	FeedValidation:               "Invalid declaration record",
	FeedBadTypeRef:               "Malformed type reference",
	ObsInfo:                      "Observability",
	ObsTimings:                   "Timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DSC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ENM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FED%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
