// Package vectorstore wraps the Qdrant gRPC client behind the narrow
// surface the ingestion pipelines and retrieval paths use.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"lawgpt-backend/models"
)

// Store is a thin adapter over a Qdrant connection. All methods address
// collections by name so the two legal corpora can share one client.
type Store struct {
	client *qdrant.Client
}

// NewStore connects to a Qdrant instance over gRPC.
func NewStore(host string, port int, apiKey string, useTLS bool) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// EnsureCollection creates the named collection with cosine distance if it
// does not already exist. Existing collections are left untouched.
func (s *Store) EnsureCollection(ctx context.Context, name string, vectorSize uint64) error {
	existing, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, collection := range existing {
		if collection == name {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// DeleteCollection drops the named collection and all its points.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	return nil
}

// GetCollectionInfo returns point and vector counts for the named collection.
func (s *Store) GetCollectionInfo(ctx context.Context, name string) (models.CollectionInfo, error) {
	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return models.CollectionInfo{}, fmt.Errorf("failed to get collection info for %s: %w", name, err)
	}
	return models.CollectionInfo{
		Name:         name,
		VectorsCount: info.GetVectorsCount(),
		PointsCount:  info.GetPointsCount(),
		Status:       info.GetStatus().String(),
	}, nil
}

// PointCount returns the number of points currently stored in the collection.
func (s *Store) PointCount(ctx context.Context, name string) (uint64, error) {
	info, err := s.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection info for %s: %w", name, err)
	}
	return info.GetPointsCount(), nil
}

// UpsertPoints writes a batch of points, overwriting any point that already
// holds one of the IDs. The call waits for the write to be applied so a
// follow-up count read sees the new points.
func (s *Store) UpsertPoints(ctx context.Context, collection string, points []models.IndexPoint) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		structs[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(p.Payload),
		}
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         structs,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points into %s: %w", len(points), collection, err)
	}
	return nil
}

// Search runs a nearest-neighbour query and returns the hits with their
// payloads decoded into plain Go values.
func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit uint64) ([]models.ScoredPoint, error) {
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}

	results := make([]models.ScoredPoint, 0, len(hits))
	for _, hit := range hits {
		results = append(results, models.ScoredPoint{
			ID:      hit.GetId().GetNum(),
			Score:   hit.GetScore(),
			Payload: valuesToMap(hit.GetPayload()),
		})
	}
	return results, nil
}

// valuesToMap converts a Qdrant payload into plain Go values.
func valuesToMap(payload map[string]*qdrant.Value) map[string]interface{} {
	if payload == nil {
		return nil
	}
	out := make(map[string]interface{}, len(payload))
	for key, val := range payload {
		out[key] = valueToAny(val)
	}
	return out
}

func valueToAny(val *qdrant.Value) interface{} {
	if val == nil {
		return nil
	}
	switch kind := val.GetKind().(type) {
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_StructValue:
		return valuesToMap(kind.StructValue.GetFields())
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]interface{}, 0, len(items))
		for _, item := range items {
			out = append(out, valueToAny(item))
		}
		return out
	default:
		return nil
	}
}
