package relationship

import "errors"

var (
	// ErrSelfReference is returned when viewer and subject are the same identity
	ErrSelfReference = errors.New("cannot create a relationship with yourself")

	// ErrUnauthenticated is returned when no viewer identity is present
	ErrUnauthenticated = errors.New("viewer is not authenticated")

	// ErrForbidden is returned when the viewer is not a party to the edge or
	// the edge is not in the status required for the action
	ErrForbidden = errors.New("viewer may not perform this action")

	// ErrConflict is returned when an edge already exists for the pair
	ErrConflict = errors.New("a relationship already exists for this pair")

	// ErrNotFound is returned when the referenced edge does not exist
	ErrNotFound = errors.New("relationship not found")

	// ErrStoreUnavailable is returned when the backing store cannot be reached
	ErrStoreUnavailable = errors.New("relationship store unavailable")
)
