package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Category - тип происшествия
type Category string

const (
	CategoryMedical         Category = "MEDICAL"
	CategoryFire            Category = "FIRE"
	CategoryPolice          Category = "POLICE"
	CategoryCarAccident     Category = "CAR_ACCIDENT"
	CategoryNaturalDisaster Category = "NATURAL_DISASTER"
	CategoryUtility         Category = "UTILITY"
	CategoryOther           Category = "OTHER"
)

var categories = []Category{
	CategoryMedical,
	CategoryFire,
	CategoryPolice,
	CategoryCarAccident,
	CategoryNaturalDisaster,
	CategoryUtility,
	CategoryOther,
}

// Categories возвращает все допустимые категории
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}

// ServiceType возвращает тип службы, который по умолчанию подбирается для категории.
// false означает, что фильтр по типу службы не применяется.
func (c Category) ServiceType() (ServiceType, bool) {
	switch c {
	case CategoryMedical, CategoryCarAccident:
		return ServiceAmbulance, true
	case CategoryFire:
		return ServiceFireTruck, true
	case CategoryPolice:
		return ServicePoliceCar, true
	case CategoryNaturalDisaster:
		return ServiceGeneral, true
	}
	return "", false
}

// Priority - срочность реагирования
type Priority string

const (
	PriorityRed    Priority = "RED"
	PriorityOrange Priority = "ORANGE"
	PriorityYellow Priority = "YELLOW"
	PriorityGreen  Priority = "GREEN"
)

// DefaultPriority используется, если приоритет не указан
const DefaultPriority = PriorityYellow

// Rank возвращает вес приоритета: чем больше, тем срочнее. 0 - неизвестный приоритет.
func (p Priority) Rank() int {
	switch p {
	case PriorityRed:
		return 4
	case PriorityOrange:
		return 3
	case PriorityYellow:
		return 2
	case PriorityGreen:
		return 1
	}
	return 0
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Location - координаты в градусах WGS84
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid проверяет, что координаты конечны и лежат в допустимых диапазонах
func (l Location) Valid() bool {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) ||
		math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

type Incident struct {
	ID       uuid.UUID      `json:"id"`
	Code     string         `json:"code"`
	Category Category       `json:"category"`
	Priority Priority       `json:"priority"`
	Status   IncidentStatus `json:"status"`

	Location    Location `json:"location"`
	Address     string   `json:"address,omitempty"`
	City        string   `json:"city,omitempty"`
	Description string   `json:"description,omitempty"`

	Symptoms    []string       `json:"symptoms,omitempty"`
	PatientInfo map[string]any `json:"patient_info,omitempty"`
	Attachments []string       `json:"attachments,omitempty"`

	IsAnonymous bool       `json:"is_anonymous"`
	ReporterID  *uuid.UUID `json:"reporter_id,omitempty"`

	// AssignedProviderID заполнен только пока инцидент в работе (DISPATCHED, EN_ROUTE, ON_SITE)
	AssignedProviderID *uuid.UUID `json:"assigned_provider_id,omitempty"`
	// LastProviderID хранит последнего назначенного исполнителя для истории
	LastProviderID *uuid.UUID `json:"last_provider_id,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	ArrivedAt    *time.Time `json:"arrived_at,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Clone возвращает глубокую копию инцидента
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}
	c := *i
	if i.Symptoms != nil {
		c.Symptoms = append([]string(nil), i.Symptoms...)
	}
	if i.Attachments != nil {
		c.Attachments = append([]string(nil), i.Attachments...)
	}
	if i.PatientInfo != nil {
		c.PatientInfo = make(map[string]any, len(i.PatientInfo))
		for k, v := range i.PatientInfo {
			c.PatientInfo[k] = v
		}
	}
	c.ReporterID = cloneUUID(i.ReporterID)
	c.AssignedProviderID = cloneUUID(i.AssignedProviderID)
	c.LastProviderID = cloneUUID(i.LastProviderID)
	c.DispatchedAt = cloneTime(i.DispatchedAt)
	c.ArrivedAt = cloneTime(i.ArrivedAt)
	c.ResolvedAt = cloneTime(i.ResolvedAt)
	c.CancelledAt = cloneTime(i.CancelledAt)
	return &c
}

// LatestTimestamp возвращает самую позднюю из проставленных отметок жизненного цикла
func (i *Incident) LatestTimestamp() time.Time {
	latest := i.CreatedAt
	for _, ts := range []*time.Time{i.DispatchedAt, i.ArrivedAt, i.ResolvedAt, i.CancelledAt} {
		if ts != nil && ts.After(latest) {
			latest = *ts
		}
	}
	return latest
}

// CheckInvariant проверяет связь назначенного исполнителя со статусом
func (i *Incident) CheckInvariant() bool {
	return (i.AssignedProviderID != nil) == i.Status.HoldsProvider()
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
