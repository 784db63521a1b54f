package stocks

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// GetMultipleStockNews looks up every name concurrently and never fails as a
// whole. Results are keyed by name, so a name repeated in the input keeps
// whichever lookup finished last.
func (s *Service) GetMultipleStockNews(ctx context.Context, names []string) BatchResult {
	batch := BatchResult{
		Results: make(map[string]*StockNewsResult),
		Errors:  make(map[string]string),
	}
	s.StreamStockNews(ctx, names, func(item BatchItem) {
		if item.Err != nil {
			delete(batch.Results, item.Name)
			batch.Errors[item.Name] = item.Err.Error()
			return
		}
		delete(batch.Errors, item.Name)
		batch.Results[item.Name] = item.Result
	})
	logrus.WithFields(logrus.Fields{
		"requested": len(names),
		"succeeded": len(batch.Results),
		"failed":    len(batch.Errors),
	}).Info("batch stock lookup finished")
	return batch
}

// StreamStockNews starts one lookup per name and calls emit as each finishes.
// Calls to emit are serialized. It returns once every lookup has completed;
// a failure never cancels its siblings.
func (s *Service) StreamStockNews(ctx context.Context, names []string, emit func(BatchItem)) {
	batchSize.Observe(float64(len(names)))

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for _, name := range names {
		name := name
		g.Go(func() error {
			result, err := s.GetStockNews(ctx, name)
			if err != nil {
				logrus.WithError(err).WithField("stock", name).Warn("batch stock lookup failed")
			}
			mu.Lock()
			defer mu.Unlock()
			emit(BatchItem{Name: name, Result: result, Err: err})
			return nil
		})
	}
	_ = g.Wait()
}
