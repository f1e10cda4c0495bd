// Copyright 2025 The HDX Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package iter provides common iterators.
package iter

import "iter"

// All iterates over the elements of multiple sequences, in order.
func All[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for el := range seq {
				if !yield(el) {
					return
				}
			}
		}
	}
}

// Filter iterates over the elements of multiple sequences
// and excludes elements for which the filter returns false.
func Filter[T any](f func(T) bool, seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for el := range All(seqs...) {
			if !f(el) {
				continue
			}
			if !yield(el) {
				return
			}
		}
	}
}

// Of iterates over the given elements.
func Of[T any](els ...T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, el := range els {
			if !yield(el) {
				return
			}
		}
	}
}
