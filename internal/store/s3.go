package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/imamik/psclink/internal/platform/s3"
	"github.com/imamik/psclink/internal/provisioning"
	"github.com/imamik/psclink/internal/util/naming"
)

// ObjectClient is the subset of the S3 client the store needs.
type ObjectClient interface {
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
}

// S3 stores one JSON object per cluster id at naming.RecordObject.
type S3 struct {
	client ObjectClient
	bucket string
}

// NewS3 creates a store writing to bucket.
func NewS3(client ObjectClient, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

// Load implements Store.
func (s *S3) Load(ctx context.Context, clusterID string) ([]provisioning.ResourceRecord, error) {
	data, err := s.client.GetObject(ctx, s.bucket, naming.RecordObject(clusterID))
	if errors.Is(err, s3.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(clusterID, data)
}

// Save implements Store.
func (s *S3) Save(ctx context.Context, clusterID string, records []provisioning.ResourceRecord) error {
	data, err := encode(clusterID, records)
	if err != nil {
		return err
	}
	return s.client.PutObject(ctx, s.bucket, naming.RecordObject(clusterID), data)
}

// Delete implements Store.
func (s *S3) Delete(ctx context.Context, clusterID string) error {
	return s.client.DeleteObject(ctx, s.bucket, naming.RecordObject(clusterID))
}

// List implements Store.
func (s *S3) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.ListObjects(ctx, s.bucket, naming.RecordPrefix)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, key := range keys {
		rest, ok := strings.CutPrefix(key, naming.RecordPrefix)
		if !ok {
			continue
		}
		id, file, ok := strings.Cut(rest, "/")
		if ok && file == naming.RecordFile && id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
