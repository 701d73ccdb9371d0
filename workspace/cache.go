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
	"log/slog"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/l3montree-dev/sbomgraph/graph"
	"github.com/pkg/errors"
)

// GraphCache keeps recently loaded graphs in memory. The cached graphs are
// shared between callers and must not be modified.
type GraphCache struct {
	cache *lru.Cache[string, *graph.Graph]
}

func NewGraphCache(size int) (*GraphCache, error) {
	cache, err := lru.New[string, *graph.Graph](size)
	if err != nil {
		return nil, errors.Wrap(err, "could not create graph cache")
	}
	return &GraphCache{cache: cache}, nil
}

// Load returns the graph stored at path. Safe for concurrent use, a graph
// requested concurrently for the first time may be decoded twice.
func (c *GraphCache) Load(path string) (*graph.Graph, error) {
	if g, ok := c.cache.Get(path); ok {
		slog.Debug("graph cache hit", "path", path)
		return g, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open graph")
	}
	defer f.Close()

	g, err := graph.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode graph %s", path)
	}
	c.cache.Add(path, g)
	return g, nil
}

func (c *GraphCache) Len() int {
	return c.cache.Len()
}
