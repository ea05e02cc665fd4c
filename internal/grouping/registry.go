// Package grouping buckets people's height series into the ordered, closed
// set of chart groups declared in configuration.
package grouping

import (
	"errors"
	"fmt"

	"familymeter/internal/config"
	apperrors "familymeter/internal/errors"
)

// Kind says which person attribute selects membership in a group.
type Kind string

const (
	KindAll     Kind = "all"
	KindSex     Kind = "sex"
	KindLineage Kind = "lineage"
)

// ErrUnknownGroup is returned when a person's sex or lineage matches no group.
var ErrUnknownGroup = errors.New("unknown group")

// Definition describes one chart group.
type Definition struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Kind    Kind     `json:"kind"`
	Aliases []string `json:"aliases,omitempty"`
}

// Registry is the ordered set of group definitions.
type Registry struct {
	defs   []Definition
	lookup map[Kind]map[string]int
	// anyKind maps every key and alias to the first group declaring it
	anyKind map[string]int
	all     int
}

// NewRegistry builds a registry from configured groups, keeping their order.
func NewRegistry(groups []config.GroupConfig) (*Registry, error) {
	r := &Registry{
		defs:   make([]Definition, 0, len(groups)),
		lookup:  make(map[Kind]map[string]int),
		anyKind: make(map[string]int),
		all:     -1,
	}

	for i, g := range groups {
		def := Definition{Key: g.Key, Title: g.Title, Kind: Kind(g.Kind), Aliases: g.Aliases}
		if _, dup := r.Lookup(def.Key); dup {
			return nil, apperrors.NewConfigError(fmt.Sprintf("group key %q declared twice", g.Key), nil)
		}
		switch def.Kind {
		case KindAll:
			if r.all >= 0 {
				return nil, apperrors.NewConfigError("more than one group of kind all", nil).
					WithContext("group", g.Key)
			}
			r.all = i
		case KindSex, KindLineage:
			if r.lookup[def.Kind] == nil {
				r.lookup[def.Kind] = make(map[string]int)
			}
			for _, name := range append([]string{def.Key}, def.Aliases...) {
				if _, dup := r.lookup[def.Kind][name]; dup {
					return nil, apperrors.NewConfigError(fmt.Sprintf("%s value %q maps to more than one group", def.Kind, name), nil)
				}
				r.lookup[def.Kind][name] = i
			}
		default:
			return nil, apperrors.NewConfigError(fmt.Sprintf("group %q has unknown kind %q", g.Key, g.Kind), nil)
		}
		for _, name := range append([]string{def.Key}, def.Aliases...) {
			if _, seen := r.anyKind[name]; !seen {
				r.anyKind[name] = i
			}
		}
		r.defs = append(r.defs, def)
	}

	if r.all < 0 {
		return nil, apperrors.NewConfigError("no group of kind all declared", nil)
	}
	return r, nil
}

// Definitions returns the group definitions in display order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition with the given key.
func (r *Registry) Lookup(key string) (Definition, bool) {
	for _, d := range r.defs {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// resolve returns the position of the group matching value. Groups of kind k
// win; otherwise any group whose key or alias equals value is used, so a
// lineage named like a sex group shares that group.
func (r *Registry) resolve(k Kind, value string) (int, *apperrors.AppError) {
	if idx, ok := r.lookup[k][value]; ok {
		return idx, nil
	}
	idx, ok := r.anyKind[value]
	if !ok {
		return -1, apperrors.NewValidationError(fmt.Sprintf("no %s group for value %q", k, value), ErrUnknownGroup).
			WithContext("kind", string(k)).
			WithContext("value", value)
	}
	return idx, nil
}
