package models

// IndexPoint is one stored unit in the vector index: a writer-assigned
// integer ID, the embedding vector, and a string-keyed metadata payload.
// ID uniqueness is the caller's responsibility; the index performs no
// server-side check and a colliding write is a silent overwrite.
type IndexPoint struct {
	ID      uint64
	Vector  []float32
	Payload map[string]interface{}
}

// ScoredPoint is one nearest-neighbor query hit.
type ScoredPoint struct {
	ID      uint64
	Score   float32
	Payload map[string]interface{}
}

// CollectionInfo mirrors the index's collection stats surface.
type CollectionInfo struct {
	Name         string `json:"name"`
	VectorsCount uint64 `json:"vectors_count"`
	PointsCount  uint64 `json:"points_count"`
	Status       string `json:"status"`
}
