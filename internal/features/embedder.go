package features

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"
)

// DefaultDimension is the embedding dimension used when none is configured.
const DefaultDimension = 256

// Embedder turns text into a fixed-dimension vector. Implementations must be
// deterministic for a given deployment.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// stopWords carry no signal for matching.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "our": true, "that": true,
	"the": true, "this": true, "to": true, "we": true, "will": true, "with": true,
	"you": true, "your": true,
}

// Tokenize lowercases text and splits it into word tokens. Letters, digits and
// '+', '#', '.' are word characters so "c++", "c#" and "node.js" survive;
// trailing dots are trimmed and stop words dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" || stopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// HashingEmbedder is a feature-hashing embedder: each token is hashed with
// BLAKE2b into a signed bucket and the vector is L2-normalized. It needs no
// model and is a pure function of its input.
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder creates a HashingEmbedder; dim <= 0 selects DefaultDimension.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashingEmbedder{dim: dim}
}

// Dimension returns the vector length.
func (h *HashingEmbedder) Dimension() int {
	return h.dim
}

// Embed returns the hashed vector for text. Text without tokens yields the zero vector.
func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := make([]float64, h.dim)
	tokens := Tokenize(text)
	for _, tok := range tokens {
		h.add(acc, tok, 1.0)
	}
	// Adjacent pairs add a little word-order signal.
	for i := 0; i+1 < len(tokens); i++ {
		h.add(acc, tokens[i]+" "+tokens[i+1], 0.5)
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, h.dim)
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

func (h *HashingEmbedder) add(acc []float64, token string, weight float64) {
	sum := blake2b.Sum256([]byte(token))
	bucket := binary.LittleEndian.Uint64(sum[:8]) % uint64(h.dim)
	if sum[8]&1 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}
