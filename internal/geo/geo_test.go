package geo

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manila = models.Location{Latitude: 14.5995, Longitude: 120.9842}

func entryAt(lat, lng float64, opts ...func(*Entry)) Entry {
	e := Entry{
		ProviderID:          uuid.New(),
		Position:            models.Position{Latitude: lat, Longitude: lng, UpdatedAt: time.Now()},
		ServiceTypes:        []models.ServiceType{models.ServiceAmbulance},
		Status:              models.ProviderAvailable,
		IsActive:            true,
		ServiceRadiusMeters: models.DefaultServiceRadiusMeters,
	}
	for _, o := range opts {
		o(&e)
	}
	return e
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(manila, manila), 1e-9)

	// Манила - Кесон-Сити (~10.5 км)
	quezon := models.Location{Latitude: 14.6760, Longitude: 121.0437}
	assert.InDelta(t, 10_620, Distance(manila, quezon), 150)

	// один градус по меридиану
	a := models.Location{Latitude: 0, Longitude: 0}
	b := models.Location{Latitude: 1, Longitude: 0}
	assert.InDelta(t, 111_195, Distance(a, b), 10)

	// симметрия
	assert.InDelta(t, Distance(a, quezon), Distance(quezon, a), 1e-6)
}

func TestIndex_NearestOrdersByDistance(t *testing.T) {
	ix := NewIndex()
	far := entryAt(14.6200, 120.9842)  // ~2.3 км
	near := entryAt(14.6050, 120.9842) // ~0.6 км
	mid := entryAt(14.6100, 120.9842)  // ~1.2 км
	ix.Upsert(far)
	ix.Upsert(near)
	ix.Upsert(mid)

	got := ix.Nearest(Query{Point: manila, RadiusMeters: 5000, ServiceType: models.ServiceAmbulance})
	require.Len(t, got, 3)
	assert.Equal(t, near.ProviderID, got[0].ProviderID)
	assert.Equal(t, mid.ProviderID, got[1].ProviderID)
	assert.Equal(t, far.ProviderID, got[2].ProviderID)
	assert.Less(t, got[0].DistanceMeters, got[1].DistanceMeters)
}

func TestIndex_EligibilityFilters(t *testing.T) {
	ix := NewIndex()
	ok := entryAt(14.6000, 120.9850)
	ix.Upsert(ok)
	ix.Upsert(entryAt(14.6000, 120.9850, func(e *Entry) { e.Status = models.ProviderOnDuty }))
	ix.Upsert(entryAt(14.6000, 120.9850, func(e *Entry) { e.Status = models.ProviderInEmergency }))
	ix.Upsert(entryAt(14.6000, 120.9850, func(e *Entry) { e.IsActive = false }))
	ix.Upsert(entryAt(14.6000, 120.9850, func(e *Entry) { e.ServiceTypes = []models.ServiceType{models.ServicePlumber} }))
	ix.Upsert(entryAt(14.6000, 120.9850, func(e *Entry) { e.Position.UpdatedAt = time.Now().Add(-time.Hour) }))
	ix.Upsert(entryAt(14.6000, 120.9850, func(e *Entry) { e.ServiceRadiusMeters = 10 }))
	ix.Upsert(entryAt(14.7000, 120.9842)) // ~11 км, за пределами радиуса

	got := ix.Nearest(Query{
		Point:        manila,
		RadiusMeters: 5000,
		ServiceType:  models.ServiceAmbulance,
		MaxAge:       10 * time.Minute,
	})
	require.Len(t, got, 1)
	assert.Equal(t, ok.ProviderID, got[0].ProviderID)
}

func TestIndex_NoServiceTypeFilter(t *testing.T) {
	ix := NewIndex()
	ix.Upsert(entryAt(14.6000, 120.9850))
	ix.Upsert(entryAt(14.6000, 120.9850, func(e *Entry) { e.ServiceTypes = []models.ServiceType{models.ServiceLocksmith} }))

	assert.Len(t, ix.Nearest(Query{Point: manila}), 2)
}

func TestIndex_EmptyResultIsNotAnError(t *testing.T) {
	ix := NewIndex()
	got := ix.Nearest(Query{Point: manila})
	assert.Empty(t, got)

	n := 0
	for range got.All() {
		n++
	}
	assert.Zero(t, n)
}

func TestIndex_LimitAndRestartableSequence(t *testing.T) {
	ix := NewIndex()
	for i := 0; i < 20; i++ {
		ix.Upsert(entryAt(14.5995+float64(i)*0.001, 120.9842))
	}

	got := ix.Nearest(Query{Point: manila, Limit: 5})
	require.Len(t, got, 5)

	first := make([]uuid.UUID, 0, 5)
	for c := range got.All() {
		first = append(first, c.ProviderID)
	}
	second := make([]uuid.UUID, 0, 5)
	for c := range got.All() {
		second = append(second, c.ProviderID)
	}
	assert.Equal(t, first, second)
}

func TestIndex_UpsertMovesAndRemove(t *testing.T) {
	ix := NewIndex()
	e := entryAt(14.6000, 120.9850)
	ix.Upsert(e)

	// переезд в другой город
	e.Position.Latitude = 10.3157
	e.Position.Longitude = 123.8854
	ix.Upsert(e)
	assert.Equal(t, 1, ix.Len())
	assert.Empty(t, ix.Nearest(Query{Point: manila}))

	cebu := models.Location{Latitude: 10.3157, Longitude: 123.8854}
	assert.Len(t, ix.Nearest(Query{Point: cebu}), 1)

	// смена статуса видна следующему запросу
	e.Status = models.ProviderBreak
	ix.Upsert(e)
	assert.Empty(t, ix.Nearest(Query{Point: cebu}))

	ix.Remove(e.ProviderID)
	assert.Zero(t, ix.Len())
}

func TestIndex_Antimeridian(t *testing.T) {
	ix := NewIndex()
	e := entryAt(0, -179.99)
	ix.Upsert(e)

	got := ix.Nearest(Query{Point: models.Location{Latitude: 0, Longitude: 179.99}, RadiusMeters: 5000})
	require.Len(t, got, 1)
	assert.InDelta(t, 2224, got[0].DistanceMeters, 5)
}

// Случайная проверка: выдача индекса совпадает с полным перебором и не выходит за радиус.
func TestIndex_MatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	ix := NewIndex()
	statuses := []models.ProviderStatus{models.ProviderAvailable, models.ProviderAvailable, models.ProviderOnDuty, models.ProviderOffline}

	var all []Entry
	for i := 0; i < 500; i++ {
		e := entryAt(14.5+rnd.Float64()*0.3, 120.9+rnd.Float64()*0.3, func(e *Entry) {
			e.Status = statuses[rnd.Intn(len(statuses))]
			e.IsActive = rnd.Intn(10) > 0
		})
		all = append(all, e)
		ix.Upsert(e)
	}

	for i := 0; i < 50; i++ {
		q := Query{
			Point:        models.Location{Latitude: 14.5 + rnd.Float64()*0.3, Longitude: 120.9 + rnd.Float64()*0.3},
			RadiusMeters: 1000 + rnd.Float64()*8000,
			Limit:        MaxLimit,
		}
		got := ix.Nearest(q)
		want := Rank(q, func(yield func(Entry) bool) {
			for _, e := range all {
				if !yield(e) {
					return
				}
			}
		})
		require.Equal(t, len(want), len(got))
		for j := range got {
			assert.Equal(t, want[j].ProviderID, got[j].ProviderID)
			assert.LessOrEqual(t, got[j].DistanceMeters, q.RadiusMeters)
		}
	}
}

func bruteForce(q Query, all []Entry) Candidates {
	return Rank(q, func(yield func(Entry) bool) {
		for _, e := range all {
			if !yield(e) {
				return
			}
		}
	})
}

// Окно шириной почти 360 градусов: края после заворота попадают в один столбец сетки.
func TestIndex_WideRadiusNearlyFullLongitude(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	ix := NewIndex()

	var all []Entry
	for i := 0; i < 3000; i++ {
		// занимают ячейки, но в выдачу не попадают
		e := entryAt(rnd.Float64()*170-85, rnd.Float64()*360-180, func(e *Entry) { e.IsActive = false })
		all = append(all, e)
		ix.Upsert(e)
	}
	target := entryAt(61, 10.001, func(e *Entry) { e.ServiceRadiusMeters = 0 })
	all = append(all, target)
	ix.Upsert(target)

	q := Query{
		Point:        models.Location{Latitude: 60, Longitude: 10.001},
		RadiusMeters: 2_528_761,
		Limit:        MaxLimit,
	}
	got := ix.Nearest(q)

	require.Len(t, got, 1)
	assert.Equal(t, target.ProviderID, got[0].ProviderID)
	assert.InDelta(t, 111_195, got[0].DistanceMeters, 100)
	assert.Equal(t, bruteForce(q, all), got)
}

func TestIndex_WideRadiusMatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(13))
	ix := NewIndex()

	var all []Entry
	for i := 0; i < 2000; i++ {
		e := entryAt(rnd.Float64()*170-85, rnd.Float64()*360-180, func(e *Entry) {
			e.ServiceRadiusMeters = 0
		})
		all = append(all, e)
		ix.Upsert(e)
	}

	for i := 0; i < 200; i++ {
		q := Query{
			Point:        models.Location{Latitude: rnd.Float64()*170 - 85, Longitude: rnd.Float64()*360 - 180},
			RadiusMeters: 100_000 + rnd.Float64()*3_000_000,
			Limit:        MaxLimit,
		}
		got := ix.Nearest(q)
		want := bruteForce(q, all)
		require.Equal(t, len(want), len(got), "query %+v", q)
		for j := range got {
			assert.Equal(t, want[j].ProviderID, got[j].ProviderID)
		}
	}
}

func TestRank_ResultDoesNotAliasEntry(t *testing.T) {
	ix := NewIndex()
	e := entryAt(manila.Latitude, manila.Longitude)
	ix.Upsert(e)

	got := ix.Nearest(Query{Point: manila})
	require.Len(t, got, 1)
	got[0].ServiceTypes[0] = models.ServiceFireTruck

	again := ix.Nearest(Query{Point: manila, ServiceType: models.ServiceAmbulance})
	require.Len(t, again, 1)
	assert.Equal(t, []models.ServiceType{models.ServiceAmbulance}, again[0].ServiceTypes)
}

func TestIndex_ConcurrentReadersAndWriters(t *testing.T) {
	ix := NewIndex()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				ix.Upsert(entryAt(14.59+float64(i%10)*0.001, 120.98))
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				for _, c := range ix.Nearest(Query{Point: manila}) {
					assert.LessOrEqual(t, c.DistanceMeters, float64(DefaultRadiusMeters))
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8*200, ix.Len())
}
