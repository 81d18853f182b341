// Package core contains the single source of truth for the content
// directory's domain model: objects, metadata, resources, autoscan
// configuration, and the errors the persistence layer can raise.
//
// Everything here is a plain value type. Cheap clone semantics replace
// the shared-pointer handles the original implementation hands out to
// concurrent front-end sessions; caching, if ever needed, is a concern
// for the caller, not the object's identity.
package core

import "strings"

// ObjectType is a bitmask: an object may be a container, an item, an
// external item, and an active item simultaneously.
type ObjectType uint32

const (
	TypeContainer    ObjectType = 1 << 0
	TypeItem         ObjectType = 1 << 1
	TypeExternalItem ObjectType = 1 << 2
	TypeActiveItem   ObjectType = 1 << 3
)

// Has reports whether every bit in want is set in t.
func (t ObjectType) Has(want ObjectType) bool {
	return t&want == want
}

// RootID is the id of the fixed root container. It always exists and
// is never deleted.
const RootID = 0

// LocationTag identifies which resolver owns an object's Location path.
type LocationTag byte

const (
	// LocationReal marks a filesystem path owned by the scanner.
	LocationReal LocationTag = 'F'
	// LocationVirtual marks a virtual path with no backing file.
	LocationVirtual LocationTag = 'V'
	// LocationService marks a path owned by an external service; the
	// byte following the tag is the service routing prefix.
	LocationService LocationTag = 'S'
)

// Object is a node in the content directory tree.
type Object struct {
	ID         int
	ParentID   int
	RefID      *int
	Type       ObjectType
	UpnpClass  string
	Title      string
	Location   string // filesystem or virtual path, prefix-tag stripped
	LocTag     LocationTag
	ServiceTag byte // second byte of the location prefix when LocTag == LocationService
	MimeType   string
	UpdateID   int
	Flags      uint32
	ServiceID  string // non-empty for objects owned by an external service

	Metadata  map[string]string
	Resources []Resource
}

// IsContainer reports whether the object can hold children.
func (o *Object) IsContainer() bool { return o.Type.Has(TypeContainer) }

// Clone returns a deep copy of o; mutating the copy never affects o.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	if o.RefID != nil {
		ref := *o.RefID
		c.RefID = &ref
	}
	if o.Metadata != nil {
		c.Metadata = make(map[string]string, len(o.Metadata))
		for k, v := range o.Metadata {
			c.Metadata[k] = v
		}
	}
	if o.Resources != nil {
		c.Resources = make([]Resource, len(o.Resources))
		for i, r := range o.Resources {
			c.Resources[i] = r.Clone()
		}
	}
	return &c
}

// WithoutID returns a clone of o with ID and ParentID zeroed, for
// comparing two objects on everything except server-assigned ids.
func (o *Object) WithoutID() *Object {
	c := o.Clone()
	c.ID = 0
	c.ParentID = 0
	return c
}

// Resource is an addressable byte-stream view of an object: the
// original file, a transcoded derivative, a thumbnail, a subtitle
// track. Attrs holds a dense, schema-evolvable map of attribute names
// (e.g. "mimetype", "size", "resolution") to values.
type Resource struct {
	ObjectID int
	Ordinal  int
	Attrs    map[string]string
}

// Clone returns a deep copy of r.
func (r Resource) Clone() Resource {
	c := r
	if r.Attrs != nil {
		c.Attrs = make(map[string]string, len(r.Attrs))
		for k, v := range r.Attrs {
			c.Attrs[k] = v
		}
	}
	return c
}

// CompactOrdinals renumbers resources so ordinals form the contiguous
// set [0, n), preserving relative order.
func CompactOrdinals(resources []Resource) []Resource {
	out := make([]Resource, len(resources))
	for i, r := range resources {
		r.Ordinal = i
		out[i] = r
	}
	return out
}

// addLocationPrefix and stripLocationPrefix are the only functions
// that know the on-disk layout of the location column: a single text
// value whose first byte is a routing tag, with the service tag
// variant carrying a second byte naming the owning service.
func addLocationPrefix(tag LocationTag, serviceTag byte, path string) string {
	var b strings.Builder
	b.Grow(len(path) + 2)
	b.WriteByte(byte(tag))
	if tag == LocationService {
		b.WriteByte(serviceTag)
	}
	b.WriteString(path)
	return b.String()
}

// stripLocationPrefix recovers (path, tag, serviceTag) from a stored
// location column. An empty value is treated as a virtual path with an
// empty payload; a value whose first byte is not a known tag is
// returned whole as a virtual path; a service tag with no service byte
// after it yields an empty service path.
func stripLocationPrefix(dbLocation string) (path string, tag LocationTag, serviceTag byte) {
	if dbLocation == "" {
		return "", LocationVirtual, 0
	}
	tag = LocationTag(dbLocation[0])
	switch tag {
	case LocationService:
		if len(dbLocation) < 2 {
			return "", LocationService, 0
		}
		return dbLocation[2:], LocationService, dbLocation[1]
	case LocationReal, LocationVirtual:
		return dbLocation[1:], tag, 0
	default:
		return dbLocation, LocationVirtual, 0
	}
}

// AddLocationPrefix serializes a (tag, path) pair into the stored
// location column representation.
func AddLocationPrefix(tag LocationTag, serviceTag byte, path string) string {
	return addLocationPrefix(tag, serviceTag, path)
}

// StripLocationPrefix is the public entry point for decoding a stored
// location column; see addLocationPrefix for the inverse.
func StripLocationPrefix(dbLocation string) (path string, tag LocationTag, serviceTag byte) {
	return stripLocationPrefix(dbLocation)
}
