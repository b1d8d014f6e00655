// Package registry implements the document registry (C2): an in-process,
// periodically refreshed view of {active documents × owners} used by every
// query and permission check.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// snapshot is the immutable view swapped atomically on each refresh.
type snapshot struct {
	byDocumentSlug map[string]*entity.Document
	byOwnerSlug    map[string][]*entity.Document
	ownerBySlug    map[string]*entity.Owner
	ownerByHost    map[string]*entity.Owner
	refreshedAt    time.Time
}

// Listener is notified after every successful refresh.
type Listener func(refreshedAt time.Time)

// Registry holds the current snapshot and coordinates refreshes.
type Registry struct {
	current atomic.Pointer[snapshot]

	documents port.DocumentRepository
	owners    port.OwnerRepository

	refreshMu      sync.Mutex
	listenersMu    sync.Mutex
	listeners      []Listener
	failureStreak  atomic.Int32
}

// New creates a Registry with an empty initial snapshot; call Refresh
// before serving traffic.
func New(documents port.DocumentRepository, owners port.OwnerRepository) *Registry {
	r := &Registry{documents: documents, owners: owners}
	r.current.Store(&snapshot{
		byDocumentSlug: map[string]*entity.Document{},
		byOwnerSlug:    map[string][]*entity.Document{},
		ownerBySlug:    map[string]*entity.Owner{},
		ownerByHost:    map[string]*entity.Owner{},
	})
	return r
}

// GetBySlug returns a document from the current snapshot.
func (r *Registry) GetBySlug(slug string) (*entity.Document, error) {
	snap := r.current.Load()
	doc, ok := snap.byDocumentSlug[slug]
	if !ok {
		return nil, entity.ErrDocumentNotFound
	}
	return doc, nil
}

// GetByOwner returns every document for an owner slug, or by resolving a
// custom hostname to its owner first.
func (r *Registry) GetByOwner(ownerSlugOrHostname string) ([]*entity.Document, error) {
	snap := r.current.Load()
	if docs, ok := snap.byOwnerSlug[ownerSlugOrHostname]; ok {
		return docs, nil
	}
	if owner, ok := snap.ownerByHost[ownerSlugOrHostname]; ok {
		return snap.byOwnerSlug[owner.Slug], nil
	}
	return nil, entity.ErrOwnerNotFound
}

// GetOwner returns an owner by slug from the current snapshot.
func (r *Registry) GetOwner(slug string) (*entity.Owner, error) {
	snap := r.current.Load()
	owner, ok := snap.ownerBySlug[slug]
	if !ok {
		return nil, entity.ErrOwnerNotFound
	}
	return owner, nil
}

// DocumentCount returns the number of documents in the current snapshot.
func (r *Registry) DocumentCount() int {
	return len(r.current.Load().byDocumentSlug)
}

// RefreshedAt returns the timestamp of the last successful refresh.
func (r *Registry) RefreshedAt() time.Time {
	return r.current.Load().refreshedAt
}

// FailureStreak returns the number of consecutive failed refreshes.
func (r *Registry) FailureStreak() int {
	return int(r.failureStreak.Load())
}

// Subscribe registers a listener notified after every successful refresh.
func (r *Registry) Subscribe(l Listener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Refresh reloads the snapshot from the repositories and swaps it in
// atomically. Concurrent callers (the background ticker and the
// /refresh-registry webhook) are serialized by refreshMu: only one reload
// runs at a time, and a waiting caller runs its own reload once the
// previous one completes rather than sharing that reload's result.
func (r *Registry) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	docs, err := r.documents.ListActive(ctx)
	if err != nil {
		r.failureStreak.Add(1)
		slog.ErrorContext(ctx, "registry refresh failed", slog.String("error", err.Error()),
			slog.Int("consecutive_failures", int(r.failureStreak.Load())))
		return fmt.Errorf("loading active documents: %w", err)
	}
	owners, err := r.owners.List(ctx)
	if err != nil {
		r.failureStreak.Add(1)
		slog.ErrorContext(ctx, "registry refresh failed", slog.String("error", err.Error()),
			slog.Int("consecutive_failures", int(r.failureStreak.Load())))
		return fmt.Errorf("loading owners: %w", err)
	}

	next := &snapshot{
		byDocumentSlug: make(map[string]*entity.Document, len(docs)),
		byOwnerSlug:    make(map[string][]*entity.Document),
		ownerBySlug:    make(map[string]*entity.Owner, len(owners)),
		ownerByHost:    make(map[string]*entity.Owner, len(owners)),
		refreshedAt:    time.Now().UTC(),
	}
	for _, d := range docs {
		next.byDocumentSlug[d.Slug] = d
		if d.OwnerSlug != nil {
			next.byOwnerSlug[*d.OwnerSlug] = append(next.byOwnerSlug[*d.OwnerSlug], d)
		}
	}
	for _, o := range owners {
		next.ownerBySlug[o.Slug] = o
		if o.CustomHostname != nil {
			next.ownerByHost[*o.CustomHostname] = o
		}
	}

	r.current.Store(next)
	r.failureStreak.Store(0)

	r.listenersMu.Lock()
	listeners := append([]Listener(nil), r.listeners...)
	r.listenersMu.Unlock()
	for _, l := range listeners {
		l(next.refreshedAt)
	}

	slog.InfoContext(ctx, "registry refreshed", slog.Int("document_count", len(docs)), slog.Int("owner_count", len(owners)))
	return nil
}
