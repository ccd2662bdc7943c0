// Package dist exports a descriptor registry as a canonical CBOR snapshot
// and rebuilds registries from one. Descriptor ids and parent links
// survive the round trip.
package dist

import (
	"github.com/google/uuid"
)

// ClassRecord describes one class referenced by a snapshot. Any and
// Nothing are built in and never recorded.
type ClassRecord struct {
	Name      string        `cbor:"1,keyasint"`
	Namespace string        `cbor:"2,keyasint,omitempty"`
	Params    []ParamRecord `cbor:"3,keyasint,omitempty"`
	Supers    []string      `cbor:"4,keyasint,omitempty"` // fully-qualified names
	Doc       string        `cbor:"5,keyasint,omitempty"`
}

// ParamRecord is a declared type parameter.
type ParamRecord struct {
	Name     string `cbor:"1,keyasint"`
	Variance uint8  `cbor:"2,keyasint"`
}

// DescriptorRecord is one registered descriptor. Args and Parent refer to
// other records by id; every argument has a lower id than its user.
type DescriptorRecord struct {
	ID       uint32   `cbor:"1,keyasint"`
	Class    string   `cbor:"2,keyasint,omitempty"` // empty for the star projection
	Args     []uint32 `cbor:"3,keyasint,omitempty"`
	Variance []uint8  `cbor:"4,keyasint,omitempty"`
	Parent   uint32   `cbor:"5,keyasint,omitempty"`
	Hash     [32]byte `cbor:"6,keyasint"` // portable shape key
}

// Snapshot is the serialized form of a registry.
type Snapshot struct {
	Session     uuid.UUID          `cbor:"1,keyasint"`
	HashVersion byte               `cbor:"2,keyasint"`
	Classes     []ClassRecord      `cbor:"3,keyasint,omitempty"`
	Descriptors []DescriptorRecord `cbor:"4,keyasint"`
}

// FullName returns the namespace-qualified class name.
func (r ClassRecord) FullName() string {
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "." + r.Name
}
