package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/smallnest/medgraph/rag"
)

// PointsAPI is the subset of qdrant.PointsClient used by QdrantSearcher.
type PointsAPI interface {
	Search(ctx context.Context, in *qdrant.SearchPoints, opts ...grpc.CallOption) (*qdrant.SearchResponse, error)
	Upsert(ctx context.Context, in *qdrant.UpsertPoints, opts ...grpc.CallOption) (*qdrant.PointsOperationResponse, error)
}

// QdrantOptions configures NewQdrantSearcher.
type QdrantOptions struct {
	Addr       string
	Collection string
	// PayloadKey names the payload field holding the chunk text. Default "text".
	PayloadKey string
}

// QdrantSearcher serves vector search from a qdrant collection. Chunk text
// lives in a payload field next to each point.
type QdrantSearcher struct {
	points     PointsAPI
	embedder   rag.Embedder
	collection string
	payloadKey string
	conn       *grpc.ClientConn
}

var _ rag.VectorSearcher = (*QdrantSearcher)(nil)

// NewQdrantSearcher dials qdrant over plaintext gRPC.
func NewQdrantSearcher(opts QdrantOptions, embedder rag.Embedder) (*QdrantSearcher, error) {
	conn, err := grpc.NewClient(opts.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s: %w", opts.Addr, err)
	}
	s := NewQdrantSearcherWithClient(qdrant.NewPointsClient(conn), embedder, opts.Collection, opts.PayloadKey)
	s.conn = conn
	return s, nil
}

// NewQdrantSearcherWithClient wraps an existing points client.
func NewQdrantSearcherWithClient(points PointsAPI, embedder rag.Embedder, collection, payloadKey string) *QdrantSearcher {
	if payloadKey == "" {
		payloadKey = "text"
	}
	return &QdrantSearcher{
		points:     points,
		embedder:   embedder,
		collection: collection,
		payloadKey: payloadKey,
	}
}

// Search embeds query and returns the payload text of the k nearest points.
func (s *QdrantSearcher) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	emb, err := s.embedder.EmbedDocument(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         emb,
		Limit:          uint64(k),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	texts := make([]string, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		if v, ok := point.GetPayload()[s.payloadKey]; ok {
			texts = append(texts, v.GetStringValue())
		}
	}
	return texts, nil
}

// Index embeds chunks and upserts them as new points.
func (s *QdrantSearcher) Index(ctx context.Context, chunks []string) error {
	if len(chunks) == 0 {
		return nil
	}
	embs, err := s.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: uuid.NewString()}},
			Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: embs[i]}}},
			Payload: map[string]*qdrant.Value{s.payloadKey: {Kind: &qdrant.Value_StringValue{StringValue: chunk}}},
		}
	}

	if _, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// Close releases the gRPC connection when the searcher owns it.
func (s *QdrantSearcher) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
