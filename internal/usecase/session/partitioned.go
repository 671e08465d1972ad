package session

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/synapse-kb/synapse/internal/domain/search/filter"
	"github.com/synapse-kb/synapse/internal/domain/search/mode"
)

// PartitionedView splits one query across two independent streams: a
// media stream (images and videos) and a stream for everything else.
// Each stream pages independently; full-view reloads fetch both
// concurrently.
type PartitionedView struct {
	media *Controller
	rest  *Controller
}

// NewPartitionedView creates a partitioned view over a searcher. Both
// streams share query and mode but keep disjoint fixed filter subsets.
func NewPartitionedView(search Searcher, pageSize int) *PartitionedView {
	media := NewController(search, pageSize)
	media.SetFilters(filter.NewSet(filter.Image, filter.Video))

	rest := NewController(search, pageSize)
	rest.SetFilters(filter.NewSet(filter.Note, filter.URL, filter.PDF, filter.Product))

	return &PartitionedView{media: media, rest: rest}
}

// SetQuery replaces the query on both streams and resets their paging.
func (v *PartitionedView) SetQuery(query string) {
	v.media.SetQuery(query)
	v.rest.SetQuery(query)
}

// SetMode replaces the search mode on both streams.
func (v *PartitionedView) SetMode(m mode.Mode) {
	v.media.SetMode(m)
	v.rest.SetMode(m)
}

// Refresh reloads both streams concurrently. The first failure cancels
// the sibling fetch.
func (v *PartitionedView) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return v.media.Refresh(ctx) })
	g.Go(func() error { return v.rest.Refresh(ctx) })
	return g.Wait()
}

// Media returns the image and video stream.
func (v *PartitionedView) Media() *Controller { return v.media }

// Rest returns the stream for every non-media class.
func (v *PartitionedView) Rest() *Controller { return v.rest }
