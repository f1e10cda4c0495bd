// Package stringseq provides functions for converting iterator sequences to strings.
package stringseq

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Append appends the elements of its second argument to the given string builder. The separator
// string sep is placed between elements in the resulting string.
func Append(b *strings.Builder, seq iter.Seq[string], sep string) {
	n := 0
	for item := range seq {
		if n > 0 {
			b.WriteString(sep)
		}
		b.WriteString(item)
		n++
	}
}

// Join concatenates the elements of its first argument to create a single string. The separator
// string sep is placed between elements in the resulting string.
func Join(seq iter.Seq[string], sep string) string {
	var b strings.Builder
	Append(&b, seq, sep)
	return b.String()
}

// JoinQuoted is Join with every element double-quoted. Error messages use it
// to report name lists.
func JoinQuoted(seq iter.Seq[string], sep string) string {
	var b strings.Builder
	n := 0
	for item := range seq {
		if n > 0 {
			b.WriteString(sep)
		}
		b.WriteString(strconv.Quote(item))
		n++
	}
	return b.String()
}

// JoinStringer concatenates the stringified elements of its first argument to create a single
// string. The separator string sep is placed between elements in the resulting string.
func JoinStringer[T fmt.Stringer](seq iter.Seq[T], sep string) string {
	var b strings.Builder
	n := 0
	for item := range seq {
		if n > 0 {
			b.WriteString(sep)
		}
		b.WriteString(item.String())
		n++
	}
	return b.String()
}
