package health

import "context"

// CorpusSizer reports how many bytes of text are searchable.
type CorpusSizer interface {
	Len() int
}

// CachePinger checks result cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
