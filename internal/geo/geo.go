// Package geo отвечает за поиск ближайших доступных исполнителей.
//
// Расстояние считается по формуле гаверсинусов на сфере радиусом 6371008.8 м.
// Погрешность сферической модели не превышает ~0.3%, то есть единиц метров
// на городских дистанциях, чего достаточно для подбора исполнителей.
package geo

import (
	"iter"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
)

const (
	// EarthRadiusMeters - средний радиус Земли (IUGG)
	EarthRadiusMeters = 6371008.8
	// DefaultRadiusMeters - радиус поиска по умолчанию
	DefaultRadiusMeters = 5000
	// DefaultLimit - сколько кандидатов возвращать по умолчанию
	DefaultLimit = 10
	// MaxLimit - верхняя граница размера выдачи
	MaxLimit = 100
)

// Distance возвращает расстояние между точками в метрах
func Distance(a, b models.Location) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func toRadians(d float64) float64 {
	return d * math.Pi / 180
}

// Query - параметры поиска кандидатов
type Query struct {
	Point        models.Location
	RadiusMeters float64
	// ServiceType пустой - без фильтра по типу службы
	ServiceType models.ServiceType
	Limit       int
	// MaxAge > 0 отбрасывает исполнителей с устаревшей позицией
	MaxAge time.Duration
	// Now - момент, относительно которого считается возраст позиции
	Now time.Time
}

// Normalize подставляет значения по умолчанию
func (q Query) Normalize() Query {
	if q.RadiusMeters <= 0 {
		q.RadiusMeters = DefaultRadiusMeters
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Now.IsZero() {
		q.Now = time.Now()
	}
	return q
}

// Entry - состояние исполнителя, достаточное для подбора
type Entry struct {
	ProviderID          uuid.UUID
	Position            models.Position
	ServiceTypes        []models.ServiceType
	Status              models.ProviderStatus
	IsActive            bool
	ServiceRadiusMeters int
}

// EntryFromProvider строит запись индекса; false, если позиция неизвестна
func EntryFromProvider(p *models.Provider) (Entry, bool) {
	if p == nil || p.Position == nil {
		return Entry{}, false
	}
	return Entry{
		ProviderID:          p.ID,
		Position:            *p.Position,
		ServiceTypes:        append([]models.ServiceType(nil), p.ServiceTypes...),
		Status:              p.Status,
		IsActive:            p.IsActive,
		ServiceRadiusMeters: p.ServiceRadiusMeters,
	}, true
}

// Eligible проверяет все условия, кроме дистанции до точки запроса
func (e Entry) Eligible(q Query) bool {
	if !e.IsActive || e.Status != models.ProviderAvailable {
		return false
	}
	if q.MaxAge > 0 && q.Now.Sub(e.Position.UpdatedAt) > q.MaxAge {
		return false
	}
	if q.ServiceType != "" && !slices.Contains(e.ServiceTypes, q.ServiceType) {
		return false
	}
	return true
}

// Candidate - подходящий исполнитель и расстояние до него
type Candidate struct {
	ProviderID     uuid.UUID            `json:"provider_id"`
	DistanceMeters float64              `json:"distance_meters"`
	Position       models.Position      `json:"position"`
	ServiceTypes   []models.ServiceType `json:"service_types"`
}

// Candidates упорядочены по возрастанию расстояния
type Candidates []Candidate

// All возвращает последовательность, которую можно обходить повторно
func (c Candidates) All() iter.Seq[Candidate] {
	return slices.Values(c)
}

// Rank фильтрует записи, сортирует по расстоянию и обрезает по лимиту
func Rank(q Query, entries iter.Seq[Entry]) Candidates {
	q = q.Normalize()
	out := make(Candidates, 0)
	for e := range entries {
		if !e.Eligible(q) {
			continue
		}
		d := Distance(q.Point, e.Position.Location())
		if d > q.RadiusMeters {
			continue
		}
		if e.ServiceRadiusMeters > 0 && d > float64(e.ServiceRadiusMeters) {
			continue
		}
		out = append(out, Candidate{
			ProviderID:     e.ProviderID,
			DistanceMeters: d,
			Position:       e.Position,
			ServiceTypes:   slices.Clone(e.ServiceTypes),
		})
	}
	slices.SortFunc(out, func(a, b Candidate) int {
		if a.DistanceMeters < b.DistanceMeters {
			return -1
		}
		if a.DistanceMeters > b.DistanceMeters {
			return 1
		}
		return slices.Compare(a.ProviderID[:], b.ProviderID[:])
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
