package pipeline

import (
	"context"
	"time"

	"github.com/avelichko/lookback/internal/enrich"
	"github.com/avelichko/lookback/internal/model"
	"github.com/avelichko/lookback/internal/source"
	"github.com/avelichko/lookback/internal/worker"
)

// searchJob runs one adapter search with its own timeout.
type searchJob struct {
	adapter source.Adapter
	query   source.Query
	timeout time.Duration
}

type searchResult struct {
	source model.Source
	batch  *source.RawBatch
	err    error
}

func (r *searchResult) GetError() error { return r.err }

func (j *searchJob) Execute(ctx context.Context) worker.Result {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	batch, err := j.adapter.Search(ctx, j.query)
	return &searchResult{source: j.adapter.Name(), batch: batch, err: err}
}

// enrichJob upgrades one reddit item in place.
type enrichJob struct {
	enricher *enrich.Enricher
	item     *model.Item
}

type enrichResult struct {
	err error
}

func (r *enrichResult) GetError() error { return r.err }

func (j *enrichJob) Execute(ctx context.Context) worker.Result {
	return &enrichResult{err: j.enricher.Enrich(ctx, j.item)}
}
