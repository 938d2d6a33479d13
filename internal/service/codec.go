package service

import "context"

// Codec converts between a stored entity E and its API shapes. Write turns
// the input In into a persisted entity; Read renders an entity as Out. A
// codec is built per request so it can carry the viewer and, for updates,
// the entity being replaced.
type Codec[E, In, Out any] interface {
	Read(ctx context.Context, entity *E) (*Out, error)
	Write(ctx context.Context, in *In) (*E, error)
}
