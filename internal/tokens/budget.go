// Package tokens estimates prompt sizes so oversized oracle requests can be
// refused before they are sent.
package tokens

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// ErrOverBudget is returned when a prompt exceeds the configured budget.
var ErrOverBudget = errors.New("prompt exceeds token budget")

// Counter counts tokens in a piece of text.
type Counter interface {
	Count(text string) (int, error)
}

// TiktokenCounter counts tokens with a tiktoken encoding. Gemini does not
// publish its tokenizer; cl100k_base is close enough for a size guard.
type TiktokenCounter struct {
	encoding tokenizer.Encoding

	once  sync.Once
	codec tokenizer.Codec
	err   error
}

// NewTiktokenCounter creates a counter for the given encoding. An empty
// encoding selects cl100k_base.
func NewTiktokenCounter(encoding tokenizer.Encoding) *TiktokenCounter {
	if encoding == "" {
		encoding = tokenizer.Cl100kBase
	}
	return &TiktokenCounter{encoding: encoding}
}

// Count encodes text and returns the number of tokens.
func (c *TiktokenCounter) Count(text string) (int, error) {
	c.once.Do(func() {
		c.codec, c.err = tokenizer.Get(c.encoding)
		if c.err != nil {
			c.err = fmt.Errorf("failed to get tokenizer encoding: %w", c.err)
		}
	})
	if c.err != nil {
		return 0, c.err
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("failed to encode text: %w", err)
	}
	return len(ids), nil
}

// Estimator approximates token counts from the character count. It is used
// when the tokenizer cannot be loaded.
type Estimator struct {
	// CharsPerToken is the average characters per token (default: 4)
	CharsPerToken float64
}

// NewEstimator creates a new token estimator.
func NewEstimator() *Estimator {
	return &Estimator{CharsPerToken: 4.0}
}

// Count estimates the token count of text.
func (e *Estimator) Count(text string) (int, error) {
	cpt := e.CharsPerToken
	if cpt <= 0 {
		cpt = 4.0
	}
	return int(math.Ceil(float64(len(text)) / cpt)), nil
}

// Budget caps the size of prompts sent to the oracle.
type Budget struct {
	counter  Counter
	fallback Counter
	limit    int
}

// NewBudget creates a budget of limit tokens. A limit of zero or less disables
// the check.
func NewBudget(counter Counter, limit int) *Budget {
	return &Budget{counter: counter, fallback: NewEstimator(), limit: limit}
}

// Check counts prompt and returns ErrOverBudget if it is larger than the
// budget. The count is returned either way.
func (b *Budget) Check(prompt string) (int, error) {
	n, err := b.count(prompt)
	if err != nil {
		return 0, err
	}
	if b.limit > 0 && n > b.limit {
		return n, fmt.Errorf("%w: %d > %d", ErrOverBudget, n, b.limit)
	}
	return n, nil
}

func (b *Budget) count(text string) (int, error) {
	if b.counter != nil {
		if n, err := b.counter.Count(text); err == nil {
			return n, nil
		}
	}
	return b.fallback.Count(text)
}
