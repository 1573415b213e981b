package blob

import "errors"

var (
	// ErrInvalidJSON reports a document body that is not syntactically
	// valid JSON. Raised before any store mutation is attempted.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrBlobNotFound reports a missing blob, including races where the
	// blob disappears between an existence check and the mutation.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrInternal reports an invariant violation inside the manager.
	ErrInternal = errors.New("internal error")
)
