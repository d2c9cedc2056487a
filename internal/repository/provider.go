package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
	"github.com/shopspring/decimal"
)

const providerColumns = `
	id,
	account_id,
	service_types,
	certification_level,
	license_number,
	is_verified,
	verified_at,
	is_active,
	status,
	ST_Y(position::geometry) AS latitude,
	ST_X(position::geometry) AS longitude,
	position_updated_at,
	last_ping_at,
	current_incident_id,
	vehicle_type,
	vehicle_number,
	vehicle_capacity,
	total_emergencies,
	completed_emergencies,
	avg_response_ms,
	response_samples,
	rating::text,
	rating_count,
	service_radius_meters,
	created_at,
	updated_at
`

func scanProvider(row pgx.Row) (*models.Provider, error) {
	var (
		p                 = &models.Provider{}
		serviceTypes      []string
		lat, lng          *float64
		positionUpdatedAt *time.Time
		avgResponseMs     int64
		rating            string
	)
	err := row.Scan(
		&p.ID,
		&p.AccountID,
		&serviceTypes,
		&p.CertificationLevel,
		&p.LicenseNumber,
		&p.IsVerified,
		&p.VerifiedAt,
		&p.IsActive,
		&p.Status,
		&lat,
		&lng,
		&positionUpdatedAt,
		&p.LastPingAt,
		&p.CurrentIncidentID,
		&p.VehicleType,
		&p.VehicleNumber,
		&p.VehicleCapacity,
		&p.TotalEmergencies,
		&p.CompletedEmergencies,
		&avgResponseMs,
		&p.ResponseSamples,
		&rating,
		&p.RatingCount,
		&p.ServiceRadiusMeters,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ServiceTypes = toServiceTypes(serviceTypes)
	if lat != nil && lng != nil {
		p.Position = &models.Position{Latitude: *lat, Longitude: *lng}
		if positionUpdatedAt != nil {
			p.Position.UpdatedAt = *positionUpdatedAt
		}
	}
	p.AvgResponseTime = time.Duration(avgResponseMs) * time.Millisecond
	if p.Rating, err = decimal.NewFromString(rating); err != nil {
		return nil, fmt.Errorf("parse rating %q: %w", rating, err)
	}
	return p, nil
}

func toServiceTypes(raw []string) []models.ServiceType {
	out := make([]models.ServiceType, 0, len(raw))
	for _, s := range raw {
		out = append(out, models.ServiceType(s))
	}
	return out
}

func fromServiceTypes(types []models.ServiceType) []string {
	out := make([]string, 0, len(types))
	for _, s := range types {
		out = append(out, string(s))
	}
	return out
}

// positionArgs раскладывает позицию на nullable-параметры запроса
func positionArgs(pos *models.Position) (lng, lat *float64, updatedAt *time.Time) {
	if pos == nil {
		return nil, nil, nil
	}
	return &pos.Longitude, &pos.Latitude, &pos.UpdatedAt
}

// CreateProvider создает нового исполнителя
func (t *pgTx) CreateProvider(ctx context.Context, p *models.Provider) error {
	lng, lat, posAt := positionArgs(p.Position)
	query := `
		INSERT INTO providers (
			id, account_id, service_types, certification_level, license_number,
			is_verified, verified_at, is_active, status,
			position, position_updated_at, last_ping_at, current_incident_id,
			vehicle_type, vehicle_number, vehicle_capacity,
			total_emergencies, completed_emergencies, avg_response_ms, response_samples,
			rating, rating_count, service_radius_meters, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			CASE WHEN $10::float8 IS NULL THEN NULL
				ELSE ST_SetSRID(ST_MakePoint($10, $11::float8), 4326)::geography END,
			$12, $13, $14,
			$15, $16, $17,
			$18, $19, $20, $21,
			$22::numeric, $23, $24, $25, $26
		);
	`
	_, err := t.tx.Exec(ctx, query,
		p.ID,
		p.AccountID,
		fromServiceTypes(p.ServiceTypes),
		p.CertificationLevel,
		p.LicenseNumber,
		p.IsVerified,
		p.VerifiedAt,
		p.IsActive,
		string(p.Status),
		lng,
		lat,
		posAt,
		p.LastPingAt,
		p.CurrentIncidentID,
		p.VehicleType,
		p.VehicleNumber,
		p.VehicleCapacity,
		p.TotalEmergencies,
		p.CompletedEmergencies,
		p.AvgResponseTime.Milliseconds(),
		p.ResponseSamples,
		p.Rating.String(),
		p.RatingCount,
		p.ServiceRadiusMeters,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return mapError("failed to create provider", err)
	}
	return nil
}

// LockProvider читает исполнителя и блокирует строку до конца транзакции
func (t *pgTx) LockProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1 FOR UPDATE;`
	p, err := scanProvider(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("lock provider with id %s", id), err)
	}
	return p, nil
}

// UpdateProvider сохраняет изменяемые поля исполнителя
func (t *pgTx) UpdateProvider(ctx context.Context, p *models.Provider) error {
	lng, lat, posAt := positionArgs(p.Position)
	query := `
		UPDATE providers SET
			service_types = $1,
			is_verified = $2,
			verified_at = $3,
			is_active = $4,
			status = $5,
			position = CASE WHEN $6::float8 IS NULL THEN NULL
				ELSE ST_SetSRID(ST_MakePoint($6, $7::float8), 4326)::geography END,
			position_updated_at = $8,
			last_ping_at = $9,
			current_incident_id = $10,
			total_emergencies = $11,
			completed_emergencies = $12,
			avg_response_ms = $13,
			response_samples = $14,
			rating = $15::numeric,
			rating_count = $16,
			updated_at = $17
		WHERE id = $18;
	`
	cmdTag, err := t.tx.Exec(ctx, query,
		fromServiceTypes(p.ServiceTypes),
		p.IsVerified,
		p.VerifiedAt,
		p.IsActive,
		string(p.Status),
		lng,
		lat,
		posAt,
		p.LastPingAt,
		p.CurrentIncidentID,
		p.TotalEmergencies,
		p.CompletedEmergencies,
		p.AvgResponseTime.Milliseconds(),
		p.ResponseSamples,
		p.Rating.String(),
		p.RatingCount,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return mapError("failed to update provider", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("provider with id %s not found for update: %w", p.ID, service.ErrNotFound)
	}
	return nil
}

// SavePing сохраняет сигнал исполнителя в бд
func (t *pgTx) SavePing(ctx context.Context, ping *models.ProviderPing) error {
	query := `
		INSERT INTO provider_pings (provider_id, location, status, recorded_at)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4, $5) RETURNING id;
	`
	err := t.tx.QueryRow(ctx, query,
		ping.ProviderID,
		ping.Longitude,
		ping.Latitude,
		string(ping.Status),
		ping.RecordedAt,
	).Scan(&ping.ID)
	if err != nil {
		return mapError("failed to save provider ping", err)
	}
	return nil
}

// GetProvider возвращает исполнителя по его UUID
func (s *Store) GetProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1;`
	p, err := scanProvider(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("get provider with id %s", id), err)
	}
	return p, nil
}

// nearestProviders повторяет правила geo.Rank на стороне PostGIS.
// Расстояние считается по сфере, как и в индексе в памяти.
func nearestProviders(ctx context.Context, db querier, q geo.Query) (geo.Candidates, error) {
	q = q.Normalize()
	var cutoff *time.Time
	if q.MaxAge > 0 {
		c := q.Now.Add(-q.MaxAge)
		cutoff = &c
	}

	query := `
		WITH q AS (
			SELECT ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography AS point
		)
		SELECT
			p.id,
			p.service_types,
			ST_Y(p.position::geometry) AS latitude,
			ST_X(p.position::geometry) AS longitude,
			p.position_updated_at,
			ST_Distance(p.position, q.point, false) AS distance
		FROM providers p, q
		WHERE
			p.is_active
			AND p.status = 'AVAILABLE'
			AND p.position IS NOT NULL
			AND ($4 = '' OR $4 = ANY(p.service_types))
			AND ($5::timestamptz IS NULL OR p.position_updated_at >= $5)
			AND ST_DWithin(p.position, q.point, $3, false)
			AND (p.service_radius_meters <= 0 OR ST_DWithin(p.position, q.point, p.service_radius_meters, false))
		ORDER BY distance, p.id
		LIMIT $6;
	`
	rows, err := db.Query(ctx, query,
		q.Point.Longitude,
		q.Point.Latitude,
		q.RadiusMeters,
		string(q.ServiceType),
		cutoff,
		q.Limit,
	)
	if err != nil {
		return nil, mapError("failed to find nearest providers", err)
	}
	defer rows.Close()

	candidates := make(geo.Candidates, 0)
	for rows.Next() {
		var (
			c            geo.Candidate
			serviceTypes []string
		)
		if err := rows.Scan(
			&c.ProviderID,
			&serviceTypes,
			&c.Position.Latitude,
			&c.Position.Longitude,
			&c.Position.UpdatedAt,
			&c.DistanceMeters,
		); err != nil {
			return nil, mapError("failed to scan provider row in nearest", err)
		}
		c.ServiceTypes = toServiceTypes(serviceTypes)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("error list iteration in nearest", err)
	}
	return candidates, nil
}
