package pool

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StringBuilderPool implements a pool of strings.Builder for efficient string building
type StringBuilderPool struct {
	pool sync.Pool
}

// NewStringBuilderPool creates a new strings.Builder pool
func NewStringBuilderPool() *StringBuilderPool {
	return &StringBuilderPool{
		pool: sync.Pool{
			New: func() interface{} {
				return new(StringBuilder)
			},
		},
	}
}

// Get retrieves a StringBuilder from the pool or creates a new one if none are available
func (sbp *StringBuilderPool) Get() *StringBuilder {
	return sbp.pool.Get().(*StringBuilder)
}

// Put returns a StringBuilder to the pool for reuse
func (sbp *StringBuilderPool) Put(sb *StringBuilder) {
	sb.Reset()
	sbp.pool.Put(sb)
}

// StringBuilder wraps strings.Builder with additional functionality
type StringBuilder struct {
	builder strings.Builder
}

// Grow grows the builder capacity
func (sb *StringBuilder) Grow(n int) {
	sb.builder.Grow(n)
}

// Len returns the number of accumulated bytes
func (sb *StringBuilder) Len() int {
	return sb.builder.Len()
}

// WriteRune writes a rune to the builder
func (sb *StringBuilder) WriteRune(r rune) {
	sb.builder.WriteRune(r)
}

// WriteString writes a string to the builder
func (sb *StringBuilder) WriteString(s string) {
	sb.builder.WriteString(s)
}

// String returns the accumulated string
func (sb *StringBuilder) String() string {
	return sb.builder.String()
}

// Reset resets the builder for reuse
func (sb *StringBuilder) Reset() {
	sb.builder.Reset()
}

// CaserPool pools lower-casing transformers. A cases.Caser is stateful and must not be
// shared between goroutines.
type CaserPool struct {
	pool sync.Pool
}

// NewLowerCaserPool creates a pool of language-neutral lower-casers
func NewLowerCaserPool() *CaserPool {
	return &CaserPool{
		pool: sync.Pool{
			New: func() interface{} {
				c := cases.Lower(language.Und)
				return &c
			},
		},
	}
}

// String lower-cases s using a pooled caser
func (cp *CaserPool) String(s string) string {
	c := cp.pool.Get().(*cases.Caser)
	defer cp.pool.Put(c)
	return c.String(s)
}
