package entity

// DownloadLink is a titled external link surfaced alongside a document.
type DownloadLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Document is a registered, queryable unit of content belonging to an
// optional owner. Documents are created on ingestion completion, before
// their chunks, and destroyed (cascading to chunks and blob artifacts) on
// admin delete.
type Document struct {
	Slug                string            `json:"slug"`
	Title               string            `json:"title"`
	Subtitle            string            `json:"subtitle"`
	OwnerSlug           *string           `json:"ownerSlug,omitempty"`
	AccessLevel         AccessLevel       `json:"accessLevel"`
	Passcode            *string           `json:"-"`
	ChunkLimitOverride  *int              `json:"chunkLimitOverride,omitempty"`
	ForcedModel         *ChatModel        `json:"forcedModel,omitempty"`
	EmbeddingType       EmbeddingType     `json:"embeddingType"`
	Active              bool              `json:"active"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	Downloads           []DownloadLink    `json:"downloads,omitempty"`
}

// Validate checks the document's own invariants (ownership/access-level
// consistency, embedding type, chunk-limit bounds). It does not check
// cross-entity invariants such as owner existence; that is the caller's
// responsibility (typically a use case backed by the owner repository).
func (d *Document) Validate() error {
	if d.Slug == "" {
		return ErrRequiredField
	}
	if !d.AccessLevel.IsValid() {
		return ErrInvalidSlug
	}
	if d.AccessLevel.RequiresOwner() && d.OwnerSlug == nil {
		return ErrRequiredField
	}
	if d.AccessLevel == AccessLevelPasscode && (d.Passcode == nil || *d.Passcode == "") {
		return ErrRequiredField
	}
	if !d.EmbeddingType.IsValid() {
		return ErrUnsupportedMimeType
	}
	if d.ChunkLimitOverride != nil && (*d.ChunkLimitOverride < 1 || *d.ChunkLimitOverride > 200) {
		return ErrInvalidChunkLimit
	}
	if d.ForcedModel != nil && !d.ForcedModel.IsValid() {
		return ErrUnknownModel
	}
	return nil
}

// BelongsToOwner reports whether the document is scoped to the given owner.
func (d *Document) BelongsToOwner(ownerSlug string) bool {
	return d.OwnerSlug != nil && *d.OwnerSlug == ownerSlug
}
