package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imamik/psclink/internal/provisioning"
)

// Store loads and saves the records of one cluster id at a time.
type Store interface {
	// Load returns the stored records, or nil when none exist.
	Load(ctx context.Context, clusterID string) ([]provisioning.ResourceRecord, error)
	// Save replaces the stored records.
	Save(ctx context.Context, clusterID string, records []provisioning.ResourceRecord) error
	// Delete removes the records; deleting an absent partition succeeds.
	Delete(ctx context.Context, clusterID string) error
	// List returns the cluster ids with stored records.
	List(ctx context.Context) ([]string, error)
}

// document is the persisted form of one partition.
type document struct {
	ClusterID string                        `json:"clusterId"`
	Records   []provisioning.ResourceRecord `json:"records"`
}

func encode(clusterID string, records []provisioning.ResourceRecord) ([]byte, error) {
	data, err := json.Marshal(document{ClusterID: clusterID, Records: records})
	if err != nil {
		return nil, fmt.Errorf("failed to encode records of %s: %w", clusterID, err)
	}
	return data, nil
}

func decode(clusterID string, data []byte) ([]provisioning.ResourceRecord, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode records of %s: %w", clusterID, err)
	}
	if doc.ClusterID != clusterID {
		return nil, fmt.Errorf("records of %s are stored under %s", doc.ClusterID, clusterID)
	}
	return doc.Records, nil
}
