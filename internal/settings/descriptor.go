// Package settings defines the engine settings that can be inspected and
// changed remotely, together with their wire encodings.
package settings

import (
	"errors"
	"fmt"
	"strings"
)

// Key identifies a single setting, e.g. "window.vsync".
type Key string

// ApplyPolicy controls when a changed value is sent to the engine.
type ApplyPolicy int

const (
	// Immediate settings are written on every change.
	Immediate ApplyPolicy = iota
	// Deferred settings are staged locally until the group is applied.
	Deferred
)

func (p ApplyPolicy) String() string {
	if p == Deferred {
		return "deferred"
	}
	return "immediate"
}

// ErrOutOfDomain is returned when encoding a value the descriptor does not offer.
var ErrOutOfDomain = errors.New("value not in setting domain")

// Value is a domain value. String is only used for presentation.
type Value interface {
	fmt.Stringer
}

type unrecognized struct{}

func (unrecognized) String() string { return "Unrecognized" }

// Unrecognized is decoded from wire values that have no domain counterpart.
var Unrecognized Value = unrecognized{}

// Codec converts between domain values and JSON wire bodies.
type Codec interface {
	// Encode returns the wire body for v. It fails only for values outside the domain.
	Encode(v Value) (any, error)
	// NewWire returns a pointer suitable for JSON decoding of a wire body.
	NewWire() any
	// Decode maps a wire body produced by NewWire back to a domain value,
	// returning Unrecognized when there is no match.
	Decode(wire any) Value
}

// Requirement makes a descriptor editable only while a sibling setting holds
// an allowed value.
type Requirement struct {
	Key    Key
	Allows func(Value) bool
}

// Descriptor is the static definition of one setting.
type Descriptor struct {
	Key      Key
	Label    string
	Path     string
	Domain   []Value
	Default  Value
	Policy   ApplyPolicy
	Codec    Codec
	Requires *Requirement
}

// Contains reports whether v is one of the descriptor's domain values.
func (d Descriptor) Contains(v Value) bool {
	for _, candidate := range d.Domain {
		if candidate == v {
			return true
		}
	}
	return false
}

// Encode returns the wire body for v.
func (d Descriptor) Encode(v Value) (any, error) {
	if !d.Contains(v) {
		return nil, fmt.Errorf("%s: %v: %w", d.Key, v, ErrOutOfDomain)
	}
	return d.Codec.Encode(v)
}

// Decode returns the domain value for a wire body.
func (d Descriptor) Decode(wire any) Value {
	return d.Codec.Decode(wire)
}

// Labels returns the presentation labels of the domain, in order.
func (d Descriptor) Labels() []string {
	labels := make([]string, 0, len(d.Domain))
	for _, v := range d.Domain {
		labels = append(labels, v.String())
	}
	return labels
}

// Parse finds the domain value with the given label, ignoring case.
func Parse(d Descriptor, label string) (Value, error) {
	label = strings.TrimSpace(label)
	for _, v := range d.Domain {
		if strings.EqualFold(v.String(), label) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%s: %q (options: %s): %w",
		d.Key, label, strings.Join(d.Labels(), ", "), ErrOutOfDomain)
}
