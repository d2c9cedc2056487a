package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportIncidentRequest DTO для регистрации вызова
// @Description DTO для регистрации вызова
type ReportIncidentRequest struct {
	ReporterID  *uuid.UUID     `json:"reporter_id,omitempty"`
	IsAnonymous bool           `json:"is_anonymous"`
	Category    string         `json:"category" validate:"required"`
	Priority    string         `json:"priority,omitempty"`
	Latitude    *float64       `json:"latitude" validate:"required,latitude"`
	Longitude   *float64       `json:"longitude" validate:"required,longitude"`
	Address     string         `json:"address,omitempty" validate:"max=500"`
	City        string         `json:"city,omitempty" validate:"max=100"`
	Description string         `json:"description,omitempty" validate:"max=2000"`
	Symptoms    []string       `json:"symptoms,omitempty" validate:"max=50,dive,max=200"`
	PatientInfo map[string]any `json:"patient_info,omitempty"`
	Attachments []string       `json:"attachments,omitempty" validate:"max=20,dive,url"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                 uuid.UUID      `json:"id"`
	Code               string         `json:"code"`
	Category           string         `json:"category"`
	Priority           string         `json:"priority"`
	Status             string         `json:"status"`
	Latitude           float64        `json:"latitude"`
	Longitude          float64        `json:"longitude"`
	Address            string         `json:"address,omitempty"`
	City               string         `json:"city,omitempty"`
	Description        string         `json:"description,omitempty"`
	Symptoms           []string       `json:"symptoms,omitempty"`
	PatientInfo        map[string]any `json:"patient_info,omitempty"`
	Attachments        []string       `json:"attachments,omitempty"`
	IsAnonymous        bool           `json:"is_anonymous"`
	ReporterID         *uuid.UUID     `json:"reporter_id,omitempty"`
	AssignedProviderID *uuid.UUID     `json:"assigned_provider_id,omitempty"`
	LastProviderID     *uuid.UUID     `json:"last_provider_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	DispatchedAt       *time.Time     `json:"dispatched_at,omitempty"`
	ArrivedAt          *time.Time     `json:"arrived_at,omitempty"`
	ResolvedAt         *time.Time     `json:"resolved_at,omitempty"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// ListIncidentsQuery параметры списка инцидентов
type ListIncidentsQuery struct {
	Status   string `form:"status"`
	Active   bool   `form:"active"`
	Page     int    `form:"page" validate:"gte=0"`
	PageSize int    `form:"pageSize" validate:"gte=0,lte=100"`
}

// CandidatesQuery параметры подбора исполнителей
type CandidatesQuery struct {
	Limit        int     `form:"limit" validate:"gte=0,lte=100"`
	RadiusMeters float64 `form:"radius_meters" validate:"gte=0"`
	ServiceType  string  `form:"service_type"`
}

// NearbyQuery параметры поиска исполнителей около точки
type NearbyQuery struct {
	Latitude     *float64 `form:"lat" validate:"required,latitude"`
	Longitude    *float64 `form:"lng" validate:"required,longitude"`
	RadiusMeters float64  `form:"radius_meters" validate:"gte=0"`
	ServiceType  string   `form:"service_type"`
	Limit        int      `form:"limit" validate:"gte=0,lte=100"`
}

// CandidateResponse DTO кандидата на назначение
// @Description DTO кандидата на назначение
type CandidateResponse struct {
	ProviderID      uuid.UUID `json:"provider_id"`
	DistanceMeters  float64   `json:"distance_meters"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	LocationUpdated time.Time `json:"location_updated_at"`
	ServiceTypes    []string  `json:"service_types"`
}

// AssignRequest DTO назначения исполнителя
// @Description DTO назначения исполнителя
type AssignRequest struct {
	ProviderID uuid.UUID `json:"provider_id" validate:"required"`
}

// AssignmentResponse DTO результата назначения
// @Description DTO результата назначения
type AssignmentResponse struct {
	Incident *IncidentResponse `json:"incident"`
	Provider *ProviderResponse `json:"provider"`
}

// StatusRequest DTO смены статуса
// @Description DTO смены статуса
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RegisterProviderRequest DTO для подключения исполнителя
// @Description DTO для подключения исполнителя
type RegisterProviderRequest struct {
	AccountID           uuid.UUID `json:"account_id" validate:"required"`
	ServiceTypes        []string  `json:"service_types" validate:"required,min=1,dive,required"`
	CertificationLevel  string    `json:"certification_level,omitempty" validate:"max=50"`
	LicenseNumber       string    `json:"license_number,omitempty" validate:"max=100"`
	VehicleType         string    `json:"vehicle_type,omitempty" validate:"max=50"`
	VehicleNumber       string    `json:"vehicle_number,omitempty" validate:"max=50"`
	VehicleCapacity     int       `json:"vehicle_capacity,omitempty" validate:"gte=0"`
	ServiceRadiusMeters int       `json:"service_radius_meters,omitempty" validate:"gte=0"`
}

// PingRequest DTO сигнала доступности
// @Description DTO сигнала доступности
type PingRequest struct {
	Latitude   *float64   `json:"latitude" validate:"required,latitude"`
	Longitude  *float64   `json:"longitude" validate:"required,longitude"`
	Status     string     `json:"status,omitempty"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// RatingRequest DTO оценки исполнителя
// @Description DTO оценки исполнителя
type RatingRequest struct {
	Score float64 `json:"score" validate:"required,gte=1,lte=5"`
}

// ActiveRequest DTO включения/отключения исполнителя
// @Description DTO включения/отключения исполнителя
type ActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ProviderResponse DTO для ответа с информацией об исполнителе
// @Description DTO для ответа с информацией об исполнителе
type ProviderResponse struct {
	ID                     uuid.UUID       `json:"id"`
	AccountID              uuid.UUID       `json:"account_id"`
	ServiceTypes           []string        `json:"service_types"`
	CertificationLevel     string          `json:"certification_level,omitempty"`
	LicenseNumber          string          `json:"license_number,omitempty"`
	IsVerified             bool            `json:"is_verified"`
	VerifiedAt             *time.Time      `json:"verified_at,omitempty"`
	IsActive               bool            `json:"is_active"`
	Status                 string          `json:"status"`
	Latitude               *float64        `json:"latitude,omitempty"`
	Longitude              *float64        `json:"longitude,omitempty"`
	LocationUpdatedAt      *time.Time      `json:"location_updated_at,omitempty"`
	LastPingAt             *time.Time      `json:"last_ping_at,omitempty"`
	CurrentIncidentID      *uuid.UUID      `json:"current_incident_id,omitempty"`
	VehicleType            string          `json:"vehicle_type,omitempty"`
	VehicleNumber          string          `json:"vehicle_number,omitempty"`
	VehicleCapacity        int             `json:"vehicle_capacity"`
	TotalEmergencies       int             `json:"total_emergencies"`
	CompletedEmergencies   int             `json:"completed_emergencies"`
	AvgResponseTimeSeconds float64         `json:"avg_response_time_seconds"`
	Rating                 decimal.Decimal `json:"rating" swaggertype:"string"`
	RatingCount            int             `json:"rating_count"`
	ServiceRadiusMeters    int             `json:"service_radius_meters"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
