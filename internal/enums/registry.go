package enums

import (
	"context"
	"sort"
	"sync"

	"lowerc/internal/diag"
	"lowerc/internal/trace"
	"lowerc/internal/types"
)

// Registry classifies declarations and tags the interned enum descriptors.
// Register is safe for concurrent use.
type Registry struct {
	in         *types.Interner
	classifier *Classifier

	mu       sync.Mutex
	excluded map[types.TypeID]*Error
	byName   map[string]types.TypeID
	mappings map[string][]types.TypeID
}

func NewRegistry(in *types.Interner) *Registry {
	return &Registry{
		in:         in,
		classifier: NewClassifier(in),
		excluded:   make(map[types.TypeID]*Error),
		byName:     make(map[string]types.TypeID),
		mappings:   make(map[string][]types.TypeID),
	}
}

// Register classifies d, reports its diagnostics to r and tags the
// descriptor. ok is false when the enum is excluded. A non-nil error means
// the descriptor was already tagged differently, which is a malformed key.
func (reg *Registry) Register(ctx context.Context, d Decl, r diag.Reporter) (info types.EnumInfo, ok bool, err error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDecl, "enum:"+d.Name, trace.SpanFromContext(ctx))
	defer func() {
		if ok {
			span.WithExtra("variant", info.Variant.String())
		}
		span.End("")
	}()

	return reg.apply(d, reg.classifier.Classify(d), r)
}

// Apply records an outcome produced by Classify, or read back from a
// cache, exactly as Register would have.
func (reg *Registry) Apply(ctx context.Context, d Decl, out Outcome, r diag.Reporter) (info types.EnumInfo, ok bool, err error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDecl, "enum:"+d.Name, trace.SpanFromContext(ctx))
	defer span.End("")
	return reg.apply(d, out, r)
}

func (reg *Registry) apply(d Decl, out Outcome, r diag.Reporter) (types.EnumInfo, bool, error) {
	if r != nil {
		for _, dg := range out.Diagnostics {
			r.Report(dg)
		}
	}
	if out.Excluded() {
		reg.mu.Lock()
		reg.excluded[d.Type] = out.Err
		reg.mu.Unlock()
		return types.EnumInfo{}, false, nil
	}
	if err := reg.in.TagEnum(d.Type, out.Info); err != nil {
		return types.EnumInfo{}, false, err
	}

	reg.mu.Lock()
	reg.byName[d.Name] = d.Type
	if out.Info.Variant.IsNative() {
		reg.mappings[out.Info.Namespace] = append(reg.mappings[out.Info.Namespace], d.Type)
	}
	reg.mu.Unlock()
	return out.Info, true, nil
}

// Classify runs the classifier without recording anything.
func (reg *Registry) Classify(d Decl) Outcome {
	return reg.classifier.Classify(d)
}

// Lookup returns the tagged info for a registered enum.
func (reg *Registry) Lookup(id types.TypeID) (types.EnumInfo, bool) {
	return reg.in.EnumInfo(id)
}

// ByName finds a registered enum by qualified name.
func (reg *Registry) ByName(name string) (types.TypeID, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	id, ok := reg.byName[name]
	return id, ok
}

// IsExcluded reports whether classification rejected id.
func (reg *Registry) IsExcluded(id types.TypeID) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	_, ok := reg.excluded[id]
	return ok
}

// Excluded returns the rejected enums ordered by name.
func (reg *Registry) Excluded() []*Error {
	reg.mu.Lock()
	out := make([]*Error, 0, len(reg.excluded))
	for _, e := range reg.excluded {
		out = append(out, e)
	}
	reg.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Enum < out[j].Enum })
	return out
}

// SharedMapping lists the native enums mapped onto the same foreign
// namespace as id, including id itself, in ID order.
func (reg *Registry) SharedMapping(id types.TypeID) []types.TypeID {
	info, ok := reg.in.EnumInfo(id)
	if !ok || !info.Variant.IsNative() {
		return nil
	}
	reg.mu.Lock()
	ids := append([]types.TypeID(nil), reg.mappings[info.Namespace]...)
	reg.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
