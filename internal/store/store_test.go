package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/psclink/internal/platform/cloud"
	"github.com/imamik/psclink/internal/platform/s3"
	"github.com/imamik/psclink/internal/provisioning"
)

// fakeObjects is an in-memory ObjectClient.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte

	PutErr error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PutErr != nil {
		return f.PutErr
	}
	f.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, s3.ErrObjectNotFound)
	}
	return data, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+key)
	return nil
}

func (f *fakeObjects) ListObjects(_ context.Context, bucket, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		key, ok := strings.CutPrefix(k, bucket+"/")
		if ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func sampleRecords() []provisioning.ResourceRecord {
	hc := provisioning.NewRecord(cloud.KindHealthCheck, "psc-c1-hc", "mgmt", 2)
	hc.State = provisioning.StateReady
	hc.URI = "https://cloud.local/v1/projects/mgmt/global/healthChecks/psc-c1-hc"
	hc.Labels = map[string]string{"psclink.io/cluster": "c1"}
	hc.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fr := provisioning.NewRecord(cloud.KindForwardingRule, "psc-c1-ilb", "mgmt", 2)
	fr.State = provisioning.StateFailed
	fr.LastError = &provisioning.RecordError{Kind: cloud.ErrorQuota, Message: "quota exceeded"}
	fr.UpdatedAt = time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)

	return []provisioning.ResourceRecord{hc, fr}
}

func stores() map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemory() },
		"s3":     func() Store { return NewS3(newFakeObjects(), "psclink-records") },
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := newStore()

			records, err := s.Load(ctx, "c1")
			require.NoError(t, err)
			assert.Nil(t, records)

			want := sampleRecords()
			require.NoError(t, s.Save(ctx, "c1", want))

			got, err := s.Load(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, want, got)

			ids, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"c1"}, ids)

			require.NoError(t, s.Delete(ctx, "c1"))
			require.NoError(t, s.Delete(ctx, "c1"))
			got, err = s.Load(ctx, "c1")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestStorePartitionsByClusterID(t *testing.T) {
	t.Parallel()

	for name, newStore := range stores() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := newStore()

			require.NoError(t, s.Save(ctx, "c1", sampleRecords()))
			require.NoError(t, s.Save(ctx, "c2", sampleRecords()[:1]))
			require.NoError(t, s.Delete(ctx, "c1"))

			got, err := s.Load(ctx, "c2")
			require.NoError(t, err)
			assert.Len(t, got, 1)

			ids, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"c2"}, ids)
		})
	}
}

func TestMemoryStoreDoesNotAlias(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemory()

	records := sampleRecords()
	require.NoError(t, s.Save(ctx, "c1", records))
	records[0].Labels["psclink.io/cluster"] = "mutated"

	got, err := s.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got[0].Labels["psclink.io/cluster"])
}

func TestS3StoreLayout(t *testing.T) {
	t.Parallel()
	objects := newFakeObjects()
	s := NewS3(objects, "bucket")

	require.NoError(t, s.Save(context.Background(), "c1", sampleRecords()))

	keys, err := objects.ListObjects(context.Background(), "bucket", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"clusters/c1/records.json"}, keys)

	data, err := objects.GetObject(context.Background(), "bucket", "clusters/c1/records.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"clusterId":"c1"`)
	assert.Contains(t, string(data), `"state":"Ready"`)
}

func TestS3StoreIgnoresForeignKeys(t *testing.T) {
	t.Parallel()
	objects := newFakeObjects()
	require.NoError(t, objects.PutObject(context.Background(), "bucket", "clusters/c9/notes.txt", []byte("x")))
	require.NoError(t, objects.PutObject(context.Background(), "bucket", "other/c8/records.json", []byte("x")))

	ids, err := NewS3(objects, "bucket").List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestS3StoreErrors(t *testing.T) {
	t.Parallel()
	objects := newFakeObjects()
	objects.PutErr = errors.New("access denied")
	s := NewS3(objects, "bucket")

	assert.ErrorContains(t, s.Save(context.Background(), "c1", sampleRecords()), "access denied")

	objects.PutErr = nil
	require.NoError(t, objects.PutObject(context.Background(), "bucket", "clusters/c1/records.json", []byte("{not json")))
	_, err := s.Load(context.Background(), "c1")
	assert.ErrorContains(t, err, "failed to decode records of c1")

	require.NoError(t, objects.PutObject(context.Background(), "bucket", "clusters/c2/records.json", []byte(`{"clusterId":"c1","records":[]}`)))
	_, err = s.Load(context.Background(), "c2")
	assert.ErrorContains(t, err, "stored under c2")
}
