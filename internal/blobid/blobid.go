// Package blobid mints and validates blob identifiers.
//
// Identifiers are 12-byte Mongo-style object ids rendered as 24 hex
// characters. The same id shape is used by every storage engine so that a
// blob keeps its identifier when a deployment switches engines.
package blobid

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID reports an identifier that does not have the fixed
// 12-byte shape.
var ErrInvalidID = errors.New("invalid blob id")

// ID is an opaque blob identifier.
type ID = primitive.ObjectID

// Nil is the zero identifier. It never names a stored blob.
var Nil = primitive.NilObjectID

// New returns a fresh globally-unique identifier.
func New() ID {
	return primitive.NewObjectID()
}

// Parse validates text as a 24-character hex identifier.
func Parse(text string) (ID, error) {
	id, err := primitive.ObjectIDFromHex(text)
	if err != nil {
		return Nil, ErrInvalidID
	}
	return id, nil
}

// IsValid reports whether text parses as an identifier.
func IsValid(text string) bool {
	_, err := Parse(text)
	return err == nil
}
