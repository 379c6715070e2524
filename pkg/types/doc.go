// Package types holds no business logic: every exported type is a plain
// data carrier (OutboundMessage adds only its routing-key helpers and JSON
// wire encoding) so that codec, store, and transport packages can agree
// on a shape without importing each other.
package types
