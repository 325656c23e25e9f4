package provider

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChunk(t *testing.T) {
	t.Run("plain text appends", func(t *testing.T) {
		c := ParseChunk("hello")
		assert.Equal(t, Chunk{Text: "hello"}, c)
	})

	t.Run("wipe prefix resets", func(t *testing.T) {
		c := ParseChunk(WipeSentinel + "fresh")
		assert.Equal(t, Chunk{Text: "fresh", Reset: true}, c)
	})

	t.Run("bare sentinel clears everything", func(t *testing.T) {
		c := ParseChunk(WipeSentinel)
		assert.Equal(t, Chunk{Text: "", Reset: true}, c)
	})
}

func TestApply(t *testing.T) {
	assert.Equal(t, "ab", Apply("a", Chunk{Text: "b"}))
	assert.Equal(t, "c", Apply("ab", Chunk{Text: "c", Reset: true}))
	assert.Equal(t, "", Apply("long placeholder", Chunk{Reset: true}))
}

func TestAccumulatorWipeSequence(t *testing.T) {
	var acc Accumulator
	for _, raw := range []string{"A", "B", WipeSentinel + "C", "D"} {
		acc.AddRaw(raw)
	}
	assert.Equal(t, "CD", acc.String())
}

func TestAccumulatorOrderPreserved(t *testing.T) {
	var acc Accumulator
	for i := 0; i < 10; i++ {
		acc.Add(Chunk{Text: fmt.Sprintf("%d", i)})
	}
	assert.Equal(t, "0123456789", acc.String())
}

func TestAccumulatorConcurrentReads(t *testing.T) {
	var acc Accumulator
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			acc.Add(Chunk{Text: "x"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = acc.String()
		}
	}()
	wg.Wait()
	assert.Len(t, acc.String(), 100)
}
