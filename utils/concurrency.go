// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ErrGroupWithResult runs functions with a bounded amount of goroutines and
// collects their results in the order the functions were submitted.
type ErrGroupWithResult[T any] struct {
	group   *errgroup.Group
	ctx     context.Context
	results []*T
}

func ErrGroup[T any](ctx context.Context, limit int) *ErrGroupWithResult[T] {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	return &ErrGroupWithResult[T]{
		group: g,
		ctx:   ctx,
	}
}

// Context is cancelled as soon as one function returned an error.
func (g *ErrGroupWithResult[T]) Context() context.Context {
	return g.ctx
}

// Go must not be called concurrently with itself.
func (g *ErrGroupWithResult[T]) Go(f func(ctx context.Context) (T, error)) {
	slot := new(T)
	g.results = append(g.results, slot)
	g.group.Go(func() error {
		if err := g.ctx.Err(); err != nil {
			return err
		}
		res, err := f(g.ctx)
		if err != nil {
			return err
		}
		*slot = res
		return nil
	})
}

func (g *ErrGroupWithResult[T]) WaitAndCollect() ([]T, error) {
	if err := g.group.Wait(); err != nil {
		return nil, err
	}
	res := make([]T, len(g.results))
	for i, r := range g.results {
		res[i] = *r
	}
	return res, nil
}
