// Package output persists reconstructed artifacts to a local directory tree.
//
// Documents are written as indented JSON or CBOR, images as PNG. Every file is
// written to a temporary sibling and renamed into place.
package output
