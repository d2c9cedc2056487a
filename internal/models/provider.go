package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceType - вид службы, которую может оказать исполнитель
type ServiceType string

const (
	ServiceAmbulance   ServiceType = "AMBULANCE"
	ServiceFireTruck   ServiceType = "FIRE_TRUCK"
	ServicePoliceCar   ServiceType = "POLICE_CAR"
	ServiceTowTruck    ServiceType = "TOW_TRUCK"
	ServicePlumber     ServiceType = "PLUMBER"
	ServiceElectrician ServiceType = "ELECTRICIAN"
	ServiceLocksmith   ServiceType = "LOCKSMITH"
	ServiceGeneral     ServiceType = "GENERAL"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceAmbulance, ServiceFireTruck, ServicePoliceCar, ServiceTowTruck,
		ServicePlumber, ServiceElectrician, ServiceLocksmith, ServiceGeneral:
		return true
	}
	return false
}

const (
	// DefaultServiceRadiusMeters - максимальная дистанция выезда по умолчанию
	DefaultServiceRadiusMeters = 50000
	// MaxRating - верхняя граница рейтинга
	MaxRating = 5
)

// Position - последняя известная точка исполнителя и время её получения
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Position) Location() Location {
	return Location{Latitude: p.Latitude, Longitude: p.Longitude}
}

type Provider struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`

	ServiceTypes       []ServiceType `json:"service_types"`
	CertificationLevel string        `json:"certification_level,omitempty"`
	LicenseNumber      string        `json:"license_number,omitempty"`
	IsVerified         bool          `json:"is_verified"`
	VerifiedAt         *time.Time    `json:"verified_at,omitempty"`
	IsActive           bool          `json:"is_active"`

	Status            ProviderStatus `json:"status"`
	Position          *Position      `json:"position,omitempty"`
	LastPingAt        *time.Time     `json:"last_ping_at,omitempty"`
	CurrentIncidentID *uuid.UUID     `json:"current_incident_id,omitempty"`

	VehicleType     string `json:"vehicle_type,omitempty"`
	VehicleNumber   string `json:"vehicle_number,omitempty"`
	VehicleCapacity int    `json:"vehicle_capacity"`

	TotalEmergencies     int             `json:"total_emergencies"`
	CompletedEmergencies int             `json:"completed_emergencies"`
	AvgResponseTime      time.Duration   `json:"avg_response_time"`
	ResponseSamples      int             `json:"response_samples"`
	Rating               decimal.Decimal `json:"rating"`
	RatingCount          int             `json:"rating_count"`

	ServiceRadiusMeters int `json:"service_radius_meters"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Offers проверяет, входит ли тип службы в набор исполнителя
func (p *Provider) Offers(s ServiceType) bool {
	for _, v := range p.ServiceTypes {
		if v == s {
			return true
		}
	}
	return false
}

// CheckInvariant проверяет связь текущего инцидента со статусом
func (p *Provider) CheckInvariant() bool {
	return (p.CurrentIncidentID != nil) == (p.Status == ProviderInEmergency)
}

// RecordResponse добавляет время реагирования в скользящее среднее
func (p *Provider) RecordResponse(d time.Duration) {
	if d < 0 {
		return
	}
	p.ResponseSamples++
	p.AvgResponseTime += (d - p.AvgResponseTime) / time.Duration(p.ResponseSamples)
}

// AddRating учитывает новую оценку; рейтинг хранится с точностью до сотых
func (p *Provider) AddRating(score decimal.Decimal) {
	total := p.Rating.Mul(decimal.NewFromInt(int64(p.RatingCount))).Add(score)
	p.RatingCount++
	avg := total.Div(decimal.NewFromInt(int64(p.RatingCount))).Round(2)
	if avg.GreaterThan(decimal.NewFromInt(MaxRating)) {
		avg = decimal.NewFromInt(MaxRating)
	}
	if avg.IsNegative() {
		avg = decimal.Zero
	}
	p.Rating = avg
}

// Clone возвращает глубокую копию исполнителя
func (p *Provider) Clone() *Provider {
	if p == nil {
		return nil
	}
	c := *p
	c.ServiceTypes = append([]ServiceType(nil), p.ServiceTypes...)
	if p.Position != nil {
		pos := *p.Position
		c.Position = &pos
	}
	c.VerifiedAt = cloneTime(p.VerifiedAt)
	c.LastPingAt = cloneTime(p.LastPingAt)
	c.CurrentIncidentID = cloneUUID(p.CurrentIncidentID)
	return &c
}
