package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	fieldFileId   = "file_id"
	fieldOrdinal  = "ordinal"
	fieldSegment  = "segment"
	fieldContent  = "content"
	fieldFilename = "filename"

	scrollPageSize = 256
)

var logger = logger_i.NewLogger("Qdrant")

type Options struct {
	Host       string
	Port       int
	Collection string
	Dimension  uint64
}

type Store struct {
	client     *qdrant.Client
	collection string
}

// NewStore connects, creates the collection when missing and indexes file_id for filtered ops.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     opts.Host,
		Port:     opts.Port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	if err = createCollection(ctx, client, opts.Collection, opts.Dimension); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not create collection %q: %w", opts.Collection, err)
	}
	logger.Info("qdrant ready", "host", opts.Host, "port", opts.Port, "collection", opts.Collection)
	return &Store{client: client, collection: opts.Collection}, nil
}

func (db *Store) Close() error {
	logger.Info("Shutting down Qdrant")
	return db.client.Close()
}

func fileFilter(fileId int64) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchInt(fieldFileId, fileId),
		},
	}
}

func (db *Store) Upsert(ctx context.Context, entries []commonModels.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(entries))
	for i, e := range entries {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(e.Id),
			Vectors: qdrant.NewVectors(e.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				fieldFileId:   e.FileId,
				fieldOrdinal:  int64(e.Ordinal),
				fieldSegment:  int64(e.Segment),
				fieldContent:  e.Content,
				fieldFilename: e.Filename,
			}),
		}
	}

	_, err := db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *Store) Search(ctx context.Context, vector []float32, limit int) ([]commonModels.ScoredChunk, error) {
	if limit <= 0 {
		return []commonModels.ScoredChunk{}, nil
	}
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY)
	result, err := db.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	hits := make([]commonModels.ScoredChunk, 0, len(result))
	for _, hit := range result {
		hits = append(hits, commonModels.ScoredChunk{
			Entry: entryFromPayload(hit.GetId().GetUuid(), hit.GetPayload()),
			Score: hit.GetScore(),
		})
	}
	log.Debug("qdrant search", "hits", len(hits))
	return hits, nil
}

func entryFromPayload(id string, payload map[string]*qdrant.Value) commonModels.VectorEntry {
	return commonModels.VectorEntry{
		Id:       id,
		FileId:   payload[fieldFileId].GetIntegerValue(),
		Ordinal:  int(payload[fieldOrdinal].GetIntegerValue()),
		Segment:  int(payload[fieldSegment].GetIntegerValue()),
		Content:  payload[fieldContent].GetStringValue(),
		Filename: payload[fieldFilename].GetStringValue(),
	}
}

func (db *Store) CountByFile(ctx context.Context, fileId int64) (int, error) {
	n, err := db.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: db.collection,
		Filter:         fileFilter(fileId),
		Exact:          qdrant.PtrOf(true),
	})
	if isMissingCollection(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return int(n), nil
}

func (db *Store) DeleteByFile(ctx context.Context, fileId int64) error {
	_, err := db.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(fileFilter(fileId)),
	})
	if isMissingCollection(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

// ListFileIds scrolls the whole collection reading only file_id. Scroll offsets are
// inclusive, so every page after the first drops its leading point.
func (db *Store) ListFileIds(ctx context.Context) ([]int64, error) {
	seen := make(map[int64]struct{})
	var offset *qdrant.PointId
	for {
		limit := uint32(scrollPageSize)
		if offset != nil {
			limit++
		}
		points, err := db.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: db.collection,
			Offset:         offset,
			Limit:          qdrant.PtrOf(limit),
			WithPayload:    qdrant.NewWithPayloadInclude(fieldFileId),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant scroll failed: %w", err)
		}
		if offset != nil && len(points) > 0 {
			points = points[1:]
		}
		for _, p := range points {
			seen[p.GetPayload()[fieldFileId].GetIntegerValue()] = struct{}{}
		}
		if len(points) < scrollPageSize {
			break
		}
		offset = points[len(points)-1].GetId()
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

// isMissingCollection treats a dropped collection as holding no entries.
func isMissingCollection(err error) bool {
	if s, ok := status.FromError(err); ok && err != nil {
		return s.Code() == codes.NotFound
	}
	return false
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, dimension uint64) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	_, err = client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collectionName,
		FieldName:      fieldFileId,
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	return err
}
