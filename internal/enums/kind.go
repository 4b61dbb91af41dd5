package enums

import "lowerc/internal/types"

var kindByName = map[string]types.ValueKind{
	types.NameString:  types.ValueString,
	"byte":            types.ValueNumber,
	"short":           types.ValueNumber,
	"int":             types.ValueNumber,
	"long":            types.ValueNumber,
	"float":           types.ValueNumber,
	"double":          types.ValueNumber,
	types.NameByte:    types.ValueNumber,
	types.NameShort:   types.ValueNumber,
	types.NameInteger: types.ValueNumber,
	types.NameLong:    types.ValueNumber,
	types.NameFloat:   types.ValueNumber,
	types.NameDouble:  types.ValueNumber,
	types.NameNumber:  types.ValueNumber,
	"boolean":         types.ValueBoolean,
	types.NameBoolean: types.ValueBoolean,
}

// KindOf maps a declared member type onto a custom value kind. char and
// every non-scalar type yield ValueNone.
func KindOf(t types.Type) types.ValueKind {
	switch t.Kind {
	case types.KindPrimitive, types.KindClass:
		if len(t.Args) > 0 {
			return types.ValueNone
		}
		return kindByName[t.Name]
	default:
		return types.ValueNone
	}
}
