package repository

import (
	"context"
	"fmt"

	"docforge/internal/domain"
	"docforge/internal/infra/supabase"
)

// SupabaseAssetStore serves assets from a Supabase storage bucket.
type SupabaseAssetStore struct {
	client *supabase.Client
	bucket string
	logger domain.Logger
}

func NewSupabaseAssetStore(client *supabase.Client, bucket string, logger domain.Logger) *SupabaseAssetStore {
	return &SupabaseAssetStore{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

func (s *SupabaseAssetStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db := s.client.DB()
	if db == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, err := db.Storage.DownloadFile(s.bucket, ref)
	if err != nil {
		return nil, fmt.Errorf("downloading asset: %w", err)
	}
	s.logger.Debug("asset downloaded", "bucket", s.bucket, "ref", ref, "bytes", len(data))
	return data, nil
}
