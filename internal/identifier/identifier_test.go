package identifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCounter struct{}

func (failingCounter) Next(context.Context, int) (int64, error) {
	return 0, errors.New("counter unavailable")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "EMT-2024-0001", Format("EMT", 2024, 1))
	assert.Equal(t, "EMT-2024-0420", Format("EMT", 2024, 420))
	assert.Equal(t, "EMT-2024-9999", Format("EMT", 2024, 9999))
	// после 9999 поле расширяется, а не переполняется
	assert.Equal(t, "EMT-2024-10000", Format("EMT", 2024, 10000))
}

func TestParse(t *testing.T) {
	prefix, year, seq, err := Parse("EMT-2025-0042")
	require.NoError(t, err)
	assert.Equal(t, "EMT", prefix)
	assert.Equal(t, 2025, year)
	assert.Equal(t, int64(42), seq)

	_, _, seq, err = Parse("EMT-2025-12345")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), seq)

	for _, bad := range []string{"", "EMT-2025", "EMT-25-0001", "EMT-2025-01", "EMT-2025-abcd", "EMT-2025-0000"} {
		_, _, _, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestGenerator_SequencePerYear(t *testing.T) {
	g := NewGenerator("", NewMemoryCounter())
	ctx := context.Background()

	c1, err := g.NextCode(ctx, 2024)
	require.NoError(t, err)
	c2, err := g.NextCode(ctx, 2024)
	require.NoError(t, err)
	c3, err := g.NextCode(ctx, 2025)
	require.NoError(t, err)

	assert.Equal(t, "EMT-2024-0001", c1)
	assert.Equal(t, "EMT-2024-0002", c2)
	assert.Equal(t, "EMT-2025-0001", c3)
}

func TestGenerator_CounterFailure(t *testing.T) {
	g := NewGenerator("EMT", failingCounter{})

	code, err := g.NextCode(context.Background(), 2024)
	require.Error(t, err)
	assert.Empty(t, code)
}

func TestGenerator_ConcurrentCallsAreUnique(t *testing.T) {
	const workers = 64
	const perWorker = 50

	g := NewGenerator("EMT", NewMemoryCounter())
	codes := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				code, err := g.NextCode(context.Background(), 2024)
				if err != nil {
					t.Error(err)
					return
				}
				codes <- code
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]struct{}, workers*perWorker)
	for code := range codes {
		_, dup := seen[code]
		assert.False(t, dup, "duplicate code %s", code)
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Contains(t, seen, Format("EMT", 2024, workers*perWorker))
}

func TestMemoryCounter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryCounter().Next(ctx, 2024)
	assert.ErrorIs(t, err, context.Canceled)
}
