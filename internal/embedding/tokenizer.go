package embedding

import (
	"hash/fnv"
	"strings"
)

const (
	clsToken   = 101
	sepToken   = 102
	vocabulary = 30000
)

// Tokenizer produces BERT-style model inputs (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// WordHashTokenizer lowercases, splits on whitespace and hashes each word into the vocabulary.
// It needs no vocab file, at the cost of matching the model's real word pieces.
type WordHashTokenizer struct{}

// Tokenize returns inputs padded to maxTokens (256 when <= 0), framed by [CLS] and [SEP].
func (t *WordHashTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsToken
	attentionMask[0] = 1

	pos := 1
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if pos >= maxTokens-1 {
			break
		}
		// Keep ids clear of the special tokens below 1000.
		inputIDs[pos] = int64(1000 + HashString(word)%(vocabulary-1000))
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = sepToken
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// HashString returns a deterministic non-negative hash of s.
func HashString(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() & 0x7fffffff)
}
