package gc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

type fakeUserDocRepo struct {
	orphaned []*entity.UserDocument
	updated  []*entity.UserDocument
}

func (f *fakeUserDocRepo) Create(ctx context.Context, doc *entity.UserDocument) error { return nil }

func (f *fakeUserDocRepo) FindByID(ctx context.Context, id string) (*entity.UserDocument, error) {
	return nil, entity.ErrUserDocumentNotFound
}

func (f *fakeUserDocRepo) ListByUser(ctx context.Context, userID string) ([]*entity.UserDocument, error) {
	return nil, nil
}

func (f *fakeUserDocRepo) ListStuck(ctx context.Context, thresholdSeconds int, excludeHeld []string) ([]*entity.UserDocument, error) {
	return nil, nil
}

func (f *fakeUserDocRepo) ListOrphanedBlobs(ctx context.Context, graceSeconds int) ([]*entity.UserDocument, error) {
	return f.orphaned, nil
}

func (f *fakeUserDocRepo) Update(ctx context.Context, doc *entity.UserDocument) error {
	f.updated = append(f.updated, doc)
	return nil
}

func (f *fakeUserDocRepo) CompareAndSwapStatus(ctx context.Context, id string, expected, target entity.UserDocumentStatus) (bool, error) {
	return true, nil
}

type fakeStorage struct {
	deleted []string
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}
func (f *fakeStorage) Download(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (f *fakeStorage) GetURL(ctx context.Context, key string) (string, error)   { return "", nil }
func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}
func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error) { return true, nil }

type fakeSink struct {
	completedFor []string
}

func (f *fakeSink) Completed(ctx context.Context, userDocumentID string, stage entity.ProcessingStage, message string) {
	f.completedFor = append(f.completedFor, userDocumentID)
}

func TestRun_DeletesBlobAndClearsFilePath(t *testing.T) {
	path := "uploads/doc.pdf"
	old := time.Now().UTC().Add(-time.Hour)
	repo := &fakeUserDocRepo{orphaned: []*entity.UserDocument{
		{ID: "ud-1", Status: entity.UserDocumentStatusError, FilePath: &path, UpdatedAt: old},
	}}
	storage := &fakeStorage{}
	sink := &fakeSink{}
	gc := New(repo, storage, sink, config.StorageConfig{GarbageCollectionGraceSecs: 60})

	require.NoError(t, gc.Run(context.Background()))

	assert.Equal(t, []string{"uploads/doc.pdf"}, storage.deleted)
	require.Len(t, repo.updated, 1)
	assert.Nil(t, repo.updated[0].FilePath)
	assert.Equal(t, []string{"ud-1"}, sink.completedFor)
}

func TestRun_SkipsRowStillWithinGracePeriod(t *testing.T) {
	path := "uploads/doc.pdf"
	recent := time.Now().UTC()
	repo := &fakeUserDocRepo{orphaned: []*entity.UserDocument{
		{ID: "ud-2", Status: entity.UserDocumentStatusError, FilePath: &path, UpdatedAt: recent},
	}}
	storage := &fakeStorage{}
	sink := &fakeSink{}
	gc := New(repo, storage, sink, config.StorageConfig{GarbageCollectionGraceSecs: 3600})

	require.NoError(t, gc.Run(context.Background()))

	assert.Empty(t, storage.deleted)
	assert.Empty(t, repo.updated)
}
