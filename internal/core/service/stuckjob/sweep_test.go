package stuckjob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

type fakeUserDocRepo struct {
	stuck          []*entity.UserDocument
	updated        []*entity.UserDocument
	lastExcludeIDs []string
}

func (f *fakeUserDocRepo) Create(ctx context.Context, doc *entity.UserDocument) error { return nil }

func (f *fakeUserDocRepo) FindByID(ctx context.Context, id string) (*entity.UserDocument, error) {
	return nil, entity.ErrUserDocumentNotFound
}

func (f *fakeUserDocRepo) ListByUser(ctx context.Context, userID string) ([]*entity.UserDocument, error) {
	return nil, nil
}

func (f *fakeUserDocRepo) ListStuck(ctx context.Context, thresholdSeconds int, excludeHeld []string) ([]*entity.UserDocument, error) {
	f.lastExcludeIDs = excludeHeld
	return f.stuck, nil
}

func (f *fakeUserDocRepo) ListOrphanedBlobs(ctx context.Context, graceSeconds int) ([]*entity.UserDocument, error) {
	return nil, nil
}

func (f *fakeUserDocRepo) Update(ctx context.Context, doc *entity.UserDocument) error {
	f.updated = append(f.updated, doc)
	return nil
}

func (f *fakeUserDocRepo) CompareAndSwapStatus(ctx context.Context, id string, expected, target entity.UserDocumentStatus) (bool, error) {
	return true, nil
}

type fakeSink struct {
	failedFor []string
}

func (f *fakeSink) Failed(ctx context.Context, userDocumentID string, stage entity.ProcessingStage, message string) {
	f.failedFor = append(f.failedFor, userDocumentID)
}

type fakeHeld struct {
	ids map[string]bool
}

func (f *fakeHeld) HeldByLiveWorker(id string) bool { return f.ids[id] }
func (f *fakeHeld) HeldIDs() []string {
	ids := make([]string, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	return ids
}

func TestRun_RecoversStuckRowNotHeldByLiveWorker(t *testing.T) {
	repo := &fakeUserDocRepo{stuck: []*entity.UserDocument{
		{ID: "ud-1", Status: entity.UserDocumentStatusProcessing},
	}}
	sink := &fakeSink{}
	held := &fakeHeld{ids: map[string]bool{}}
	sw := New(repo, sink, held, config.ProcessingConfig{StuckThresholdSecs: 300})

	require.NoError(t, sw.Run(context.Background()))

	require.Len(t, repo.updated, 1)
	assert.Equal(t, entity.UserDocumentStatusPending, repo.updated[0].Status)
	assert.Equal(t, []string{"ud-1"}, sink.failedFor)
}

func TestRun_SkipsRowHeldByLiveWorker(t *testing.T) {
	repo := &fakeUserDocRepo{stuck: []*entity.UserDocument{
		{ID: "ud-2", Status: entity.UserDocumentStatusProcessing},
	}}
	sink := &fakeSink{}
	held := &fakeHeld{ids: map[string]bool{"ud-2": true}}
	sw := New(repo, sink, held, config.ProcessingConfig{StuckThresholdSecs: 300})

	require.NoError(t, sw.Run(context.Background()))

	assert.Empty(t, repo.updated)
	assert.Empty(t, sink.failedFor)
}

func TestRun_PassesHeldIDsToExcludeFromQuery(t *testing.T) {
	repo := &fakeUserDocRepo{}
	sink := &fakeSink{}
	held := &fakeHeld{ids: map[string]bool{"ud-3": true}}
	sw := New(repo, sink, held, config.ProcessingConfig{StuckThresholdSecs: 300})

	require.NoError(t, sw.Run(context.Background()))
	assert.Equal(t, []string{"ud-3"}, repo.lastExcludeIDs)
}
