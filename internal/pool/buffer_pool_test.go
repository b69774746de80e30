package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringBuilderPoolResets(t *testing.T) {
	p := NewStringBuilderPool()
	sb := p.Get()
	sb.WriteString("hello")
	sb.WriteRune(' ')
	sb.WriteString("world")
	assert.Equal(t, "hello world", sb.String())
	assert.Equal(t, 11, sb.Len())
	p.Put(sb)

	sb = p.Get()
	assert.Zero(t, sb.Len())
	p.Put(sb)
}

func TestLowerCaserPool(t *testing.T) {
	p := NewLowerCaserPool()
	assert.Equal(t, "straße ist groß", p.String("STRAßE IST GROß"))
	assert.Equal(t, "ünïcödé", p.String("ÜNÏCÖDÉ"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "you are a stupid idiot", p.String("You Are A STUPID Idiot"))
			}
		}()
	}
	wg.Wait()
}
