// Package identifier выдаёт человекочитаемые коды инцидентов вида EMT-2024-0001.
package identifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultPrefix - префикс кода по умолчанию
const DefaultPrefix = "EMT"

// Counter атомарно увеличивает счётчик года и возвращает новое значение.
// Два вызова для одного года никогда не получают одно и то же значение.
type Counter interface {
	Next(ctx context.Context, year int) (int64, error)
}

// Generator формирует коды поверх счётчика
type Generator struct {
	prefix  string
	counter Counter
}

func NewGenerator(prefix string, counter Counter) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{prefix: prefix, counter: counter}
}

// NextCode выдаёт следующий код для года
func (g *Generator) NextCode(ctx context.Context, year int) (string, error) {
	seq, err := g.counter.Next(ctx, year)
	if err != nil {
		return "", fmt.Errorf("failed to allocate incident sequence: %w", err)
	}
	return Format(g.prefix, year, seq), nil
}

// Format собирает код. Номер дополняется нулями до 4 знаков и расширяется после 9999.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%04d-%04d", prefix, year, seq)
}

// Parse разбирает код на части
func Parse(code string) (prefix string, year int, seq int64, err error) {
	parts := strings.Split(code, "-")
	if len(parts) != 3 || parts[0] == "" {
		return "", 0, 0, fmt.Errorf("malformed incident code %q", code)
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 4 {
		return "", 0, 0, fmt.Errorf("malformed year in incident code %q", code)
	}
	seq, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq < 1 || len(parts[2]) < 4 {
		return "", 0, 0, fmt.Errorf("malformed sequence in incident code %q", code)
	}
	return parts[0], year, seq, nil
}

// MemoryCounter - счётчик в памяти процесса, по одному atomic.Int64 на год.
// Номер, выданный неудавшемуся созданию, не возвращается: допускаются пропуски, но не дубли.
type MemoryCounter struct {
	years sync.Map // int -> *atomic.Int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{}
}

func (c *MemoryCounter) Next(ctx context.Context, year int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, _ := c.years.LoadOrStore(year, new(atomic.Int64))
	return v.(*atomic.Int64).Add(1), nil
}
