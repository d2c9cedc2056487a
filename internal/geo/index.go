package geo

import (
	"iter"
	"math"
	"sync"

	"github.com/google/uuid"
)

// cellSizeDeg - сторона ячейки сетки в градусах (~5.5 км по широте)
const cellSizeDeg = 0.05

const (
	lngCells = int(360 / cellSizeDeg)
	latCells = int(180 / cellSizeDeg)
	// метров в градусе широты
	metersPerDegree = EarthRadiusMeters * math.Pi / 180
)

type cell struct {
	x, y int
}

func cellOf(lat, lng float64) cell {
	x := int(math.Floor((lng + 180) / cellSizeDeg))
	y := int(math.Floor((lat + 90) / cellSizeDeg))
	return cell{x: ((x % lngCells) + lngCells) % lngCells, y: min(max(y, 0), latCells-1)}
}

// Index - сеточный индекс позиций исполнителей в памяти.
// Чтения выполняются параллельно, запись видна следующему Nearest сразу после возврата Upsert/Remove.
type Index struct {
	mu    sync.RWMutex
	cells map[cell]map[uuid.UUID]Entry
	byID  map[uuid.UUID]cell
}

func NewIndex() *Index {
	return &Index{
		cells: make(map[cell]map[uuid.UUID]Entry),
		byID:  make(map[uuid.UUID]cell),
	}
}

// Upsert добавляет или обновляет запись
func (ix *Index) Upsert(e Entry) {
	c := cellOf(e.Position.Latitude, e.Position.Longitude)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.byID[e.ProviderID]; ok && old != c {
		ix.removeLocked(e.ProviderID, old)
	}
	bucket, ok := ix.cells[c]
	if !ok {
		bucket = make(map[uuid.UUID]Entry)
		ix.cells[c] = bucket
	}
	bucket[e.ProviderID] = e
	ix.byID[e.ProviderID] = c
}

// Remove удаляет исполнителя из индекса
func (ix *Index) Remove(id uuid.UUID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if c, ok := ix.byID[id]; ok {
		ix.removeLocked(id, c)
	}
}

func (ix *Index) removeLocked(id uuid.UUID, c cell) {
	if bucket, ok := ix.cells[c]; ok {
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(ix.cells, c)
		}
	}
	delete(ix.byID, id)
}

// Len возвращает количество исполнителей в индексе
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byID)
}

// Nearest возвращает ближайших подходящих исполнителей
func (ix *Index) Nearest(q Query) Candidates {
	q = q.Normalize()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return Rank(q, ix.scan(q))
}

// scan перебирает записи из ячеек, покрывающих окружность запроса.
// Вызывается под RLock.
func (ix *Index) scan(q Query) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		cells, all := ix.coveringCells(q)
		if all {
			for _, bucket := range ix.cells {
				for _, e := range bucket {
					if !yield(e) {
						return
					}
				}
			}
			return
		}
		for _, c := range cells {
			for _, e := range ix.cells[c] {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// coveringCells возвращает ячейки ограничивающего прямоугольника.
// all=true означает, что дешевле перебрать все занятые ячейки.
func (ix *Index) coveringCells(q Query) ([]cell, bool) {
	dLat := q.RadiusMeters / metersPerDegree
	minLat := q.Point.Latitude - dLat
	maxLat := q.Point.Latitude + dLat
	if minLat <= -90 || maxLat >= 90 {
		return nil, true
	}

	cosLat := math.Min(math.Cos(toRadians(minLat)), math.Cos(toRadians(maxLat)))
	dLng := q.RadiusMeters / (metersPerDegree * cosLat)
	if dLng >= 180 {
		return nil, true
	}

	// ширина считается от дуги, а не от номеров столбцов: после заворота через антимеридиан
	// края широкого окна могут попасть в один столбец
	width := int(math.Ceil(2*dLng/cellSizeDeg)) + 1
	if width >= lngCells {
		return nil, true
	}

	lo := cellOf(minLat, q.Point.Longitude-dLng)
	hi := cellOf(maxLat, q.Point.Longitude+dLng)
	height := hi.y - lo.y + 1
	if width*height > len(ix.cells) {
		return nil, true
	}

	out := make([]cell, 0, width*height)
	for dx := 0; dx < width; dx++ {
		x := (lo.x + dx) % lngCells
		for y := lo.y; y <= hi.y; y++ {
			out = append(out, cell{x: x, y: y})
		}
	}
	return out, false
}
