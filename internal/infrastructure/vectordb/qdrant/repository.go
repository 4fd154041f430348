// Package qdrant provides an EvidenceIndex implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/config"
)

const payloadStartupID = "startup_id"

var (
	_ ports.EvidenceIndex      = (*Repository)(nil)
	_ ports.EvidenceCollection = (*Repository)(nil)
)

// Repository implements the EvidenceIndex interface using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	apiKey     string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		apiKey:     cfg.APIKey,
		conn:       conn,
	}, nil
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// withAuth attaches the API key, when configured, to outgoing calls.
func (r *Repository) withAuth(ctx context.Context) context.Context {
	if r.apiKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "api-key", r.apiKey)
}

// EnsureCollection creates the collection and its startup index if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	ctx = r.withAuth(ctx)

	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	_, err = r.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
		CollectionName: r.collection,
		FieldName:      payloadStartupID,
		FieldType:      pb.PtrOf(pb.FieldType_FieldTypeKeyword),
	})
	if err != nil {
		return fmt.Errorf("creating startup index: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and all indexed evidence.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(r.withAuth(ctx), &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Nearest returns the closest indexed evidence for the startup.
func (r *Repository) Nearest(ctx context.Context, startupID string, embedding []float32) (*ports.EvidenceMatch, error) {
	resp, err := r.points.Search(r.withAuth(ctx), &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          1,
		Filter:         startupFilter(startupID),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching evidence: %w", err)
	}

	if len(resp.Result) == 0 {
		return nil, nil
	}

	best := resp.Result[0]
	return &ports.EvidenceMatch{
		SourceURL: getStringValue(best.Payload, "url"),
		Score:     best.Score,
	}, nil
}

// SaveBatch indexes evidence items. Point IDs derive from startup and URL,
// so indexing the same article twice overwrites it.
func (r *Repository) SaveBatch(ctx context.Context, items []ports.IndexedEvidence) error {
	if len(items) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(items))
	for _, it := range items {
		point := &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: pointID(it.StartupID, it.Item.SourceURL),
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: it.Embedding,
					},
				},
			},
			Payload: map[string]*pb.Value{
				payloadStartupID: {Kind: &pb.Value_StringValue{StringValue: it.StartupID}},
				"url":            {Kind: &pb.Value_StringValue{StringValue: it.Item.SourceURL}},
				"source":         {Kind: &pb.Value_StringValue{StringValue: it.Item.SourceName}},
				"title":          {Kind: &pb.Value_StringValue{StringValue: it.Item.Title}},
				"published_at":   {Kind: &pb.Value_StringValue{StringValue: it.Item.PublishedAt.Format(time.RFC3339)}},
			},
		}
		points = append(points, point)
	}

	_, err := r.points.Upsert(r.withAuth(ctx), &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

func pointID(startupID, url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(startupID+"|"+url)).String()
}

func startupFilter(startupID string) *pb.Filter {
	return &pb.Filter{
		Must: []*pb.Condition{
			{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key: payloadStartupID,
						Match: &pb.Match{
							MatchValue: &pb.Match_Keyword{
								Keyword: startupID,
							},
						},
					},
				},
			},
		},
	}
}

func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
