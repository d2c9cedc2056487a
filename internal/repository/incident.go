package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

const incidentColumns = `
	id,
	code,
	category,
	priority,
	status,
	ST_Y(location::geometry) AS latitude,
	ST_X(location::geometry) AS longitude,
	address,
	city,
	description,
	symptoms,
	patient_info,
	attachments,
	is_anonymous,
	reporter_id,
	assigned_provider_id,
	last_provider_id,
	created_at,
	dispatched_at,
	arrived_at,
	resolved_at,
	cancelled_at,
	updated_at
`

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.Code,
		&incident.Category,
		&incident.Priority,
		&incident.Status,
		&incident.Location.Latitude,
		&incident.Location.Longitude,
		&incident.Address,
		&incident.City,
		&incident.Description,
		&incident.Symptoms,
		&incident.PatientInfo,
		&incident.Attachments,
		&incident.IsAnonymous,
		&incident.ReporterID,
		&incident.AssignedProviderID,
		&incident.LastProviderID,
		&incident.CreatedAt,
		&incident.DispatchedAt,
		&incident.ArrivedAt,
		&incident.ResolvedAt,
		&incident.CancelledAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// CreateIncident создает новую запись об инциденте в бд
func (t *pgTx) CreateIncident(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (
			id, code, category, priority, status, location,
			address, city, description, symptoms, patient_info, attachments,
			is_anonymous, reporter_id, assigned_provider_id, last_provider_id,
			created_at, dispatched_at, arrived_at, resolved_at, cancelled_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23
		);
	`
	_, err := t.tx.Exec(ctx, query,
		incident.ID,
		incident.Code,
		string(incident.Category),
		string(incident.Priority),
		string(incident.Status),
		incident.Location.Longitude,
		incident.Location.Latitude,
		incident.Address,
		incident.City,
		incident.Description,
		nonNil(incident.Symptoms),
		incident.PatientInfo,
		nonNil(incident.Attachments),
		incident.IsAnonymous,
		incident.ReporterID,
		incident.AssignedProviderID,
		incident.LastProviderID,
		incident.CreatedAt,
		incident.DispatchedAt,
		incident.ArrivedAt,
		incident.ResolvedAt,
		incident.CancelledAt,
		incident.UpdatedAt,
	)
	if err != nil {
		return mapError("failed to create incident", err)
	}
	return nil
}

// LockIncident читает инцидент и блокирует строку до конца транзакции
func (t *pgTx) LockIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1 FOR UPDATE;`
	incident, err := scanIncident(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("lock incident with id %s", id), err)
	}
	return incident, nil
}

// UpdateIncident сохраняет изменяемые поля инцидента
func (t *pgTx) UpdateIncident(ctx context.Context, incident *models.Incident) error {
	query := `
		UPDATE incidents SET
			priority = $1,
			status = $2,
			assigned_provider_id = $3,
			last_provider_id = $4,
			dispatched_at = $5,
			arrived_at = $6,
			resolved_at = $7,
			cancelled_at = $8,
			updated_at = $9
		WHERE id = $10;
	`
	cmdTag, err := t.tx.Exec(ctx, query,
		string(incident.Priority),
		string(incident.Status),
		incident.AssignedProviderID,
		incident.LastProviderID,
		incident.DispatchedAt,
		incident.ArrivedAt,
		incident.ResolvedAt,
		incident.CancelledAt,
		incident.UpdatedAt,
		incident.ID,
	)
	if err != nil {
		return mapError("failed to update incident", err)
	}

	// RowsAffected() == 0 - инцидента с таким id не существует
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for update: %w", incident.ID, service.ErrNotFound)
	}
	return nil
}

// GetIncident возвращает инцидент по его UUID
func (s *Store) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`
	incident, err := scanIncident(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("get incident with id %s", id), err)
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *Store) ListIncidents(ctx context.Context, filter service.IncidentFilter) ([]*models.Incident, error) {
	filter = filter.Normalize()
	// рассчитываем смещение
	offset := (filter.Page - 1) * filter.PageSize

	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE ($1 = '' OR status = $1)
			AND (NOT $2 OR status NOT IN ('RESOLVED', 'CANCELLED'))
		ORDER BY created_at DESC, code DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := s.db.Query(ctx, query, string(filter.Status), filter.ActiveOnly, filter.PageSize, offset)
	if err != nil {
		return nil, mapError("failed to list incidents", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, mapError("failed to scan incident row", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("error list iteration", err)
	}
	return incidents, nil
}
