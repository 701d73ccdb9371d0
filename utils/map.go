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
	"cmp"
	"slices"
)

func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set is an unordered collection. Every method returning a slice sorts it
// so that callers get reproducible output.
type Set[T cmp.Ordered] map[T]struct{}

func NewSet[T cmp.Ordered](elements ...T) Set[T] {
	s := make(Set[T], len(elements))
	for _, e := range elements {
		s[e] = struct{}{}
	}
	return s
}

func (s Set[T]) Add(e T) {
	s[e] = struct{}{}
}

func (s Set[T]) Has(e T) bool {
	_, ok := s[e]
	return ok
}

// Sorted never returns nil.
func (s Set[T]) Sorted() []T {
	res := make([]T, 0, len(s))
	for e := range s {
		res = append(res, e)
	}
	slices.Sort(res)
	return res
}

func (s Set[T]) Intersect(other Set[T]) Set[T] {
	res := make(Set[T])
	for e := range s {
		if other.Has(e) {
			res.Add(e)
		}
	}
	return res
}

func (s Set[T]) Union(other Set[T]) Set[T] {
	res := make(Set[T], len(s)+len(other))
	for e := range s {
		res.Add(e)
	}
	for e := range other {
		res.Add(e)
	}
	return res
}

// Difference returns the elements of s which are not part of other.
func (s Set[T]) Difference(other Set[T]) Set[T] {
	res := make(Set[T])
	for e := range s {
		if !other.Has(e) {
			res.Add(e)
		}
	}
	return res
}
