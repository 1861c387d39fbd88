package message

import "cbor-rpc/codec"

// NamedParam is one named argument. Order is significant: named params
// keep the sequence they were built or decoded with.
type NamedParam struct {
	Name  string
	Value codec.Value
}

// Params holds the arguments of a request, either as a positional list
// or as named pairs. A Params instance is always one or the other, never
// a mix. The zero Params is an empty positional list.
type Params struct {
	pos   []codec.Value
	named []NamedParam
	isMap bool
}

// Positional returns an argv-style positional parameter list.
func Positional(values ...codec.Value) Params { return Params{pos: values} }

// Named returns a named parameter list. Names are expected to be unique
// by convention; this is not enforced, and duplicates travel as-is.
func Named(pairs ...NamedParam) Params { return Params{named: pairs, isMap: true} }

// IsNamed reports whether the params are named rather than positional.
func (p Params) IsNamed() bool { return p.isMap }

// Values returns the positional arguments, reporting false for named
// params.
func (p Params) Values() ([]codec.Value, bool) { return p.pos, !p.isMap }

// Pairs returns the named arguments in order, reporting false for
// positional params.
func (p Params) Pairs() ([]NamedParam, bool) { return p.named, p.isMap }

// IsEmpty reports whether the parameter list has zero elements.
func (p Params) IsEmpty() bool {
	if p.isMap {
		return len(p.named) == 0
	}
	return len(p.pos) == 0
}

// Nonempty collapses empty params into nil, so a request built from it
// omits the args field on the wire entirely.
func (p *Params) Nonempty() *Params {
	if p == nil || p.IsEmpty() {
		return nil
	}
	return p
}

// Equal reports structural equality: same shape, same elements in the
// same order.
func (p Params) Equal(o Params) bool {
	if p.isMap != o.isMap {
		return false
	}
	if p.isMap {
		if len(p.named) != len(o.named) {
			return false
		}
		for i := range p.named {
			if p.named[i].Name != o.named[i].Name || !p.named[i].Value.Equal(o.named[i].Value) {
				return false
			}
		}
		return true
	}
	if len(p.pos) != len(o.pos) {
		return false
	}
	for i := range p.pos {
		if !p.pos[i].Equal(o.pos[i]) {
			return false
		}
	}
	return true
}

// Value returns the canonical dynamic value form: an array for
// positional params, a map with text keys for named ones. This
// conversion never fails.
func (p Params) Value() codec.Value {
	if p.isMap {
		entries := make([]codec.Entry, len(p.named))
		for i, kv := range p.named {
			entries[i] = codec.Pair(kv.Name, kv.Value)
		}
		return codec.Map(entries...)
	}
	return codec.Array(p.pos...)
}

// ParamsFromValue validates and converts a dynamic value into Params.
// Arrays become positional params with each element taken verbatim. Maps
// become named params and every key must be text; the first non-text key
// fails the whole conversion with ErrInvalidKeyType. Any other kind
// fails with ErrInvalidParamType. No partial result is produced.
func ParamsFromValue(v codec.Value) (Params, error) {
	switch v.Kind() {
	case codec.KindArray:
		items, _ := v.Items()
		return Positional(items...), nil
	case codec.KindMap:
		entries, _ := v.Entries()
		pairs := make([]NamedParam, 0, len(entries))
		for _, e := range entries {
			name, ok := e.Key.Text()
			if !ok {
				return Params{}, ErrInvalidKeyType
			}
			pairs = append(pairs, NamedParam{Name: name, Value: e.Value})
		}
		return Named(pairs...), nil
	default:
		return Params{}, ErrInvalidParamType
	}
}
