package ingestion

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
)

const statusLogTailLimit = 50

// GetStatus implements usecase.UserDocumentUseCase.
func (s *Service) GetStatus(ctx context.Context, userDocumentID string, user *entity.User) (usecase.ProcessingStatusResult, error) {
	ud, err := s.userDocs.FindByID(ctx, userDocumentID)
	if err != nil {
		return usecase.ProcessingStatusResult{}, err
	}
	if user == nil || (ud.UserID != user.ID && !user.IsSuperAdmin()) {
		return usecase.ProcessingStatusResult{}, entity.ErrForbidden
	}
	tail, err := s.logs.Tail(ctx, userDocumentID, statusLogTailLimit)
	if err != nil {
		return usecase.ProcessingStatusResult{}, err
	}
	return usecase.ProcessingStatusResult{UserDocument: ud, LogTail: tail}, nil
}

// ListMine implements usecase.UserDocumentUseCase.
func (s *Service) ListMine(ctx context.Context, user *entity.User) ([]*entity.UserDocument, error) {
	if user == nil {
		return nil, entity.ErrUnauthorized
	}
	return s.userDocs.ListByUser(ctx, user.ID)
}

// GetDownloadURL implements usecase.UserDocumentUseCase.
func (s *Service) GetDownloadURL(ctx context.Context, userDocumentID string, user *entity.User) (string, error) {
	ud, err := s.userDocs.FindByID(ctx, userDocumentID)
	if err != nil {
		return "", err
	}
	if user == nil || (ud.UserID != user.ID && !user.IsSuperAdmin()) {
		return "", entity.ErrForbidden
	}
	if ud.FilePath == nil {
		return "", entity.ErrFilePurged
	}
	return s.storage.GetURL(ctx, *ud.FilePath)
}
