// Package ir provides the in-memory representation of a parsed message
// schema: the primitive type catalog, the PrimitiveValue constant model,
// and the entity graph (types, messages, fields, groups, variable-length
// data) consumed by code generators and the on-the-fly decoder.
//
// This package contains the data model only. All other internal packages
// import ir; ir imports nothing internal. A schema graph is built once by
// internal/compiler, sealed, and is thereafter immutable; any number of
// readers may traverse it concurrently without locking.
package ir
