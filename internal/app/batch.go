package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchFailure is one item of a best-effort batch that did not succeed.
type BatchFailure struct {
	ID  string
	Err error
}

// BatchResult lists which items of a best-effort batch succeeded and which failed.
type BatchResult struct {
	Succeeded []string
	Failed    []BatchFailure
}

func (r BatchResult) Attempted() int {
	return len(r.Succeeded) + len(r.Failed)
}

// runBestEffort calls fn once per id with at most limit calls in flight.
// A failing or panicking item never stops the others.
func runBestEffort(ctx context.Context, ids []string, limit int, fn func(ctx context.Context, id string) error) BatchResult {
	var (
		mu  sync.Mutex
		res BatchResult
		g   errgroup.Group
	)
	g.SetLimit(limit)

	for _, id := range ids {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
				mu.Lock()
				if err != nil {
					res.Failed = append(res.Failed, BatchFailure{ID: id, Err: err})
				} else {
					res.Succeeded = append(res.Succeeded, id)
				}
				mu.Unlock()
				err = nil
			}()
			return fn(ctx, id)
		})
	}
	_ = g.Wait()

	sort.Strings(res.Succeeded)
	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i].ID < res.Failed[j].ID })
	return res
}
