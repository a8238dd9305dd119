// Package store provides SchemaProvider and ValueStore implementations for
// skemaform sessions: in-memory, local files, an HTTP content store and a
// journaling decorator.
package store
