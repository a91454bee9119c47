// Package media stores uploaded post media and hands back servable URLs.
package media

import "context"

// Upload is the raw inbound file plus who sent it.
type Upload struct {
	OwnerID     string
	Filename    string
	ContentType string
	Content     []byte
}

// Stored describes a persisted media item. Kind is one of the media kind
// constants in the models package.
type Stored struct {
	URL   string
	Kind  string
	Bytes int64
}

// Storage persists uploaded media. Images are normalized before storage;
// videos are stored verbatim.
type Storage interface {
	Store(ctx context.Context, in Upload) (*Stored, error)
}
