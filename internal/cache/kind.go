package cache

import (
	"fmt"
	"sort"
	"time"
)

// Source identifies the provider a record kind originates from.
type Source string

const (
	SourceWiiFit   Source = "wiifit"
	SourceStudyLog Source = "studylog"
	SourceArena    Source = "arena"
	SourceLocal    Source = "local"
)

// Kind discriminates a record shape within a source.
type Kind struct {
	Source Source
	Name   string
}

func (k Kind) String() string {
	return string(k.Source) + "/" + k.Name
}

// Record is the envelope the store persists. Identity is unique within
// (Source, Kind); RecordDate is the point in time the record pertains to,
// not the fetch time.
type Record struct {
	Kind       Kind
	Identity   string
	RecordDate time.Time
	Payload    any
}

// Descriptor tells the store how to handle payloads of one kind: how to
// derive the conflict-resolution key and range-query date, and how to
// decode a stored payload back into its concrete type.
type Descriptor struct {
	Kind       Kind
	Identity   func(payload any) string
	RecordDate func(payload any) time.Time
	Decode     func(data []byte) (any, error)
}

// Wrap builds a Record from a raw payload using the descriptor's extractors.
func (d Descriptor) Wrap(payload any) Record {
	return Record{
		Kind:       d.Kind,
		Identity:   d.Identity(payload),
		RecordDate: d.RecordDate(payload),
		Payload:    payload,
	}
}

// Registry maps kinds to their descriptors. The store refuses operations on
// kinds that were never registered.
type Registry struct {
	descriptors map[Kind]Descriptor
}

func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{descriptors: make(map[Kind]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		r.Register(d)
	}
	return r
}

func (r *Registry) Register(d Descriptor) {
	r.descriptors[d.Kind] = d
}

func (r *Registry) Lookup(k Kind) (Descriptor, error) {
	d, ok := r.descriptors[k]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, k)
	}
	return d, nil
}

func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.descriptors))
	for k := range r.descriptors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].String() < kinds[j].String()
	})
	return kinds
}
