package dedup

import (
	"math/bits"

	"NewsCurator/internal/tokenize"
)

// bitset is a dense fixed-size bit vector over the vocabulary index.
type bitset []uint64

func newBitset(size int) bitset {
	return make(bitset, (size+63)/64)
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

// jaccard computes |a∩b| / |a∪b| over two equally sized bit vectors, 0 when
// the union is empty.
func jaccard(a, b bitset) float64 {
	var inter, union int
	for i := range a {
		inter += bits.OnesCount64(a[i] & b[i])
		union += bits.OnesCount64(a[i] | b[i])
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Similarity is the Jaccard similarity of two token sets.
func Similarity(a, b tokenize.Set) float64 {
	vocab := make(map[string]int)
	for token := range a {
		if _, ok := vocab[token]; !ok {
			vocab[token] = len(vocab)
		}
	}
	for token := range b {
		if _, ok := vocab[token]; !ok {
			vocab[token] = len(vocab)
		}
	}

	ba, bb := newBitset(len(vocab)), newBitset(len(vocab))
	for token := range a {
		ba.set(vocab[token])
	}
	for token := range b {
		bb.set(vocab[token])
	}
	return jaccard(ba, bb)
}

// Dedupe removes near-duplicates from items, comparing the text selected by
// field with Jaccard similarity over token sets. Items are scanned in order;
// a later item whose similarity to an earlier survivor exceeds threshold is
// dropped, so the first-seen representative of a cluster always survives and
// the relative order of survivors is preserved. The comparison is O(n²),
// which is fine for the bounded per-keyword result pages this is applied to.
func Dedupe[T any](items []T, field func(T) string, threshold float64) []T {
	if len(items) < 2 {
		return items
	}

	// One vocabulary per call: every distinct token gets a dense index, then
	// each item's token set becomes a bit vector over that vocabulary.
	vocab := make(map[string]int)
	tokenSets := make([]tokenize.Set, len(items))
	for i, item := range items {
		tokens := tokenize.Extract(field(item))
		tokenSets[i] = tokens
		for token := range tokens {
			if _, ok := vocab[token]; !ok {
				vocab[token] = len(vocab)
			}
		}
	}

	vectors := make([]bitset, len(items))
	for i, tokens := range tokenSets {
		vec := newBitset(len(vocab))
		for token := range tokens {
			vec.set(vocab[token])
		}
		vectors[i] = vec
	}

	removed := make([]bool, len(items))
	survivors := make([]T, 0, len(items))
	for i := range items {
		if removed[i] {
			continue
		}
		survivors = append(survivors, items[i])

		for j := i + 1; j < len(items); j++ {
			if removed[j] {
				continue
			}
			if jaccard(vectors[i], vectors[j]) > threshold {
				removed[j] = true
			}
		}
	}

	return survivors
}
