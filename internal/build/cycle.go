package build

import (
	"strings"

	"lowerc/internal/feed"
	"lowerc/internal/types"
)

type visit uint8

const (
	unvisited visit = iota
	visiting
	done
)

// checkCycles rejects declarations that reach themselves through their
// supertypes. Type arguments do not count: class Foo implements
// Comparable<Foo> is fine.
func (b *Builder) checkCycles() error {
	state := make(map[string]visit, len(b.order))
	var path []string
	var walk func(name string) error
	walk = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, p := range path {
				if p == name {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), name)
			return &types.MalformedKeyError{Subject: name, Reason: "supertype cycle: " + strings.Join(cycle, " -> ")}
		}
		state[name] = visiting
		path = append(path, name)
		for _, super := range b.supertypeNames(b.decls[name]) {
			if _, declared := b.decls[super]; !declared {
				continue
			}
			if err := walk(super); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}
	for _, name := range b.order {
		if err := walk(name); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) supertypeNames(td *feed.TypeDecl) []string {
	refs := make([]string, 0, len(td.Interfaces)+1)
	if td.Super != "" {
		refs = append(refs, td.Super)
	}
	refs = append(refs, td.Interfaces...)
	names := make([]string, 0, len(refs))
	for _, s := range refs {
		ref, err := feed.ParseTypeRef(s)
		if err != nil || ref.Dims > 0 {
			continue
		}
		names = append(names, ref.Name)
	}
	return names
}
