package item

import (
	"fmt"
	"time"
)

// Class is the content class of a stored item (closed set).
type Class string

// Content class constants.
const (
	ClassNote    Class = "note"
	ClassURL     Class = "url"
	ClassImage   Class = "image"
	ClassPDF     Class = "pdf"
	ClassVideo   Class = "video"
	ClassProduct Class = "product"
)

// Classes returns all valid content classes in a fixed order.
func Classes() []Class {
	return []Class{ClassNote, ClassURL, ClassImage, ClassPDF, ClassVideo, ClassProduct}
}

// IsValid checks if the class is one of the supported values.
func (c Class) IsValid() bool {
	switch c {
	case ClassNote, ClassURL, ClassImage, ClassPDF, ClassVideo, ClassProduct:
		return true
	}
	return false
}

// MaxContentSize is the maximum raw content size in bytes.
const MaxContentSize = 163840 // 160KB

// Item is a stored content item (immutable value object).
// The search engine only ever reads items returned by retrieval adapters.
type Item struct {
	id        string
	class     Class
	title     string
	sourceURL string
	content   string
	tags      []string
	blobKey   string
	vector    []float32
	createdAt time.Time
}

// New validates and creates an Item.
// An item must carry at least one of title, source URL, raw content,
// or a blob reference.
func New(
	id string, class Class,
	title, sourceURL, content string,
	tags []string, blobKey string,
	createdAt time.Time,
) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if !class.IsValid() {
		return Item{}, fmt.Errorf("invalid content class: %q", class)
	}
	if title == "" && sourceURL == "" && content == "" && blobKey == "" {
		return Item{}, fmt.Errorf("item has no content")
	}
	if len(content) > MaxContentSize {
		return Item{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return Item{
		id:        id,
		class:     class,
		title:     title,
		sourceURL: sourceURL,
		content:   content,
		tags:      cloneTags(tags),
		blobKey:   blobKey,
		createdAt: createdAt,
	}, nil
}

// Reconstruct creates an Item without validation (storage hydration).
func Reconstruct(
	id string, class Class,
	title, sourceURL, content string,
	tags []string, blobKey string,
	vector []float32, createdAt time.Time,
) Item {
	return Item{
		id: id, class: class,
		title: title, sourceURL: sourceURL, content: content,
		tags: tags, blobKey: blobKey,
		vector: vector, createdAt: createdAt,
	}
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Class returns the content class.
func (i *Item) Class() Class { return i.class }

// Title returns the optional title.
func (i *Item) Title() string { return i.title }

// SourceURL returns the optional source URL.
func (i *Item) SourceURL() string { return i.sourceURL }

// Content returns the optional raw text content.
func (i *Item) Content() string { return i.content }

// Tags returns the item tags.
func (i *Item) Tags() []string { return i.tags }

// BlobKey returns the optional binary-object reference.
func (i *Item) BlobKey() string { return i.blobKey }

// Vector returns the embedding vector, nil when the item was stored
// without one.
func (i *Item) Vector() []float32 { return i.vector }

// CreatedAt returns the creation timestamp.
func (i *Item) CreatedAt() time.Time { return i.createdAt }

// WithVector returns a copy with the given embedding vector set.
func (i *Item) WithVector(v []float32) Item {
	c := *i
	c.vector = v
	return c
}

// Scored is an Item plus an optional similarity score in [0,1].
// Score absence means no similarity ranking applies (lexical or
// listing results).
type Scored struct {
	item   Item
	score  float64
	scored bool
}

// NewScored creates a vector-similarity-derived result.
func NewScored(it Item, score float64) Scored {
	return Scored{item: it, score: score, scored: true}
}

// NewUnscored creates a result without a similarity score.
func NewUnscored(it Item) Scored {
	return Scored{item: it}
}

// Item returns the underlying item.
func (s *Scored) Item() Item { return s.item }

// Score returns the similarity score. Meaningful only when HasScore
// reports true.
func (s *Scored) Score() float64 { return s.score }

// HasScore reports whether a similarity score is present.
func (s *Scored) HasScore() bool { return s.scored }

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	c := make([]string, len(tags))
	copy(c, tags)
	return c
}
