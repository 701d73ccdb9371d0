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

package workspace

import (
	"context"
	"log/slog"

	"github.com/l3montree-dev/sbomgraph/utils"
)

// Runner processes independent units of a batch with a bounded number of
// goroutines. A failing unit is logged and skipped, it never aborts the batch.
type Runner struct {
	logger  *slog.Logger
	workers int
	// OnDone is called after every unit and may be called concurrently.
	OnDone func()
}

func NewRunner(logger *slog.Logger, workers int) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{logger: logger, workers: workers}
}

type Outcome[T any] struct {
	Unit  string
	Value T
	Err   error
}

// Run calls process for every unit. The outcomes have the order of the units.
// The returned error is only set if ctx was cancelled.
func Run[In, Out any](ctx context.Context, r *Runner, units []In, name func(In) string, process func(context.Context, In) (Out, error)) ([]Outcome[Out], error) {
	group := utils.ErrGroup[Outcome[Out]](ctx, r.workers)
	for _, unit := range units {
		group.Go(func(ctx context.Context) (Outcome[Out], error) {
			outcome := Outcome[Out]{Unit: name(unit)}
			outcome.Value, outcome.Err = process(ctx, unit)
			if outcome.Err != nil {
				if ctx.Err() != nil {
					return outcome, ctx.Err()
				}
				r.logger.Warn("skipping unit", "unit", outcome.Unit, "err", outcome.Err)
			}
			if r.OnDone != nil {
				r.OnDone()
			}
			return outcome, nil
		})
	}
	return group.WaitAndCollect()
}

// Succeeded returns the values of all outcomes without error.
func Succeeded[T any](outcomes []Outcome[T]) []T {
	res := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil {
			res = append(res, o.Value)
		}
	}
	return res
}
