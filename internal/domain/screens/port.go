package screens

import "context"

// Loader fetches one endpoint's full record array. On error no snapshot is returned.
type Loader interface {
	Fetch(ctx context.Context, endpoint string) (Snapshot, error)
}

// Archive keeps a copy of raw snapshot bodies.
type Archive interface {
	Put(ctx context.Context, key string, body []byte) (string, error)
}

// Exporter renders table rows into a printable document.
type Exporter interface {
	Render(title string, headers []string, rows [][]string) ([]byte, error)
}
