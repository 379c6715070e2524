// Package codec decodes raw instruction and account bytes emitted by the
// indexed program into the typed variants in pkg/types.
//
// Decoding is dispatched through a static, immutable registry keyed by
// discriminator — built once at package initialization from the map
// literal in registry.go, never mutated at runtime. Looking a discriminator up is a single map
// read; nothing here uses reflection to pick a decoder.
package codec
