package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/imamik/psclink/internal/config"
	"github.com/imamik/psclink/internal/platform"
	"github.com/imamik/psclink/internal/platform/s3"
	"github.com/imamik/psclink/internal/provisioning"
	"github.com/imamik/psclink/internal/store"
)

// Factory function variables - can be replaced in tests.
var (
	loadConfig  = config.LoadFile
	newPlatform = func(cfg *config.Config) (platform.Platform, error) {
		return platform.New(cfg)
	}
	newStore = openStore

	stdout io.Writer = os.Stdout
)

// openStore builds the record store named by the configuration. The S3
// bucket is created when it does not exist yet.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory, "":
		return store.NewMemory(), nil
	case config.StoreS3:
		client, err := s3.NewClient(ctx, s3.Options{
			Endpoint:  cfg.Store.Endpoint,
			Region:    cfg.Store.Region,
			AccessKey: os.Getenv("PSCLINK_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("PSCLINK_S3_SECRET_KEY"),
			PathStyle: cfg.Store.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx, cfg.Store.Bucket); err != nil {
			return nil, fmt.Errorf("failed to prepare record bucket: %w", err)
		}
		return store.NewS3(client, cfg.Store.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// selectRequests returns the configured requests, or only the one named
// by clusterID when it is set.
func selectRequests(cfg *config.Config, clusterID string) ([]provisioning.Request, error) {
	if clusterID == "" {
		if len(cfg.Requests) == 0 {
			return nil, fmt.Errorf("configuration contains no requests")
		}
		return cfg.Requests, nil
	}
	req, ok := cfg.Request(clusterID)
	if !ok {
		return nil, fmt.Errorf("cluster %q is not in the configuration", clusterID)
	}
	return []provisioning.Request{req}, nil
}

// setup loads the configuration and opens its platform and store.
func setup(ctx context.Context, configPath string) (*config.Config, platform.Platform, store.Store, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := newPlatform(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create platform: %w", err)
	}
	s, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return cfg, p, s, nil
}

// loadRecords reads the stored records of a cluster id into a record set
// that writes every change back.
func loadRecords(ctx context.Context, s store.Store, clusterID string) (*provisioning.RecordSet, error) {
	stored, err := s.Load(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records of %s: %w", clusterID, err)
	}
	return provisioning.NewRecordSet(stored, func(snapshot []provisioning.ResourceRecord) {
		if err := s.Save(ctx, clusterID, snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to persist records of %s: %v\n", clusterID, err)
		}
	}), nil
}
