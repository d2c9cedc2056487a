package v1

import (
	"github.com/shenikar/emergency_dispatch/internal/geo"
	"github.com/shenikar/emergency_dispatch/internal/models"
	"github.com/shenikar/emergency_dispatch/internal/service"
)

// DTOToReportRequest преобразует DTO в запрос сервиса. Теги приводятся к верхнему регистру.
func DTOToReportRequest(dto ReportIncidentRequest) service.ReportRequest {
	req := service.ReportRequest{
		ReporterID:  dto.ReporterID,
		IsAnonymous: dto.IsAnonymous,
		Category:    models.Category(models.NormalizeTag(dto.Category)),
		Priority:    models.Priority(models.NormalizeTag(dto.Priority)),
		Address:     dto.Address,
		City:        dto.City,
		Description: dto.Description,
		Symptoms:    dto.Symptoms,
		PatientInfo: dto.PatientInfo,
		Attachments: dto.Attachments,
	}
	if dto.Latitude != nil && dto.Longitude != nil {
		req.Location = models.Location{Latitude: *dto.Latitude, Longitude: *dto.Longitude}
	}
	return req
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:                 model.ID,
		Code:               model.Code,
		Category:           string(model.Category),
		Priority:           string(model.Priority),
		Status:             string(model.Status),
		Latitude:           model.Location.Latitude,
		Longitude:          model.Location.Longitude,
		Address:            model.Address,
		City:               model.City,
		Description:        model.Description,
		Symptoms:           model.Symptoms,
		PatientInfo:        model.PatientInfo,
		Attachments:        model.Attachments,
		IsAnonymous:        model.IsAnonymous,
		ReporterID:         model.ReporterID,
		AssignedProviderID: model.AssignedProviderID,
		LastProviderID:     model.LastProviderID,
		CreatedAt:          model.CreatedAt,
		DispatchedAt:       model.DispatchedAt,
		ArrivedAt:          model.ArrivedAt,
		ResolvedAt:         model.ResolvedAt,
		CancelledAt:        model.CancelledAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func DTOToRegisterProviderRequest(dto RegisterProviderRequest) service.RegisterProviderRequest {
	types := make([]models.ServiceType, 0, len(dto.ServiceTypes))
	for _, st := range dto.ServiceTypes {
		types = append(types, models.ServiceType(models.NormalizeTag(st)))
	}
	return service.RegisterProviderRequest{
		AccountID:           dto.AccountID,
		ServiceTypes:        types,
		CertificationLevel:  dto.CertificationLevel,
		LicenseNumber:       dto.LicenseNumber,
		VehicleType:         dto.VehicleType,
		VehicleNumber:       dto.VehicleNumber,
		VehicleCapacity:     dto.VehicleCapacity,
		ServiceRadiusMeters: dto.ServiceRadiusMeters,
	}
}

// ModelToProviderResponse преобразует исполнителя в DTO для ответа
func ModelToProviderResponse(model *models.Provider) *ProviderResponse {
	resp := &ProviderResponse{
		ID:                     model.ID,
		AccountID:              model.AccountID,
		ServiceTypes:           serviceTypesToStrings(model.ServiceTypes),
		CertificationLevel:     model.CertificationLevel,
		LicenseNumber:          model.LicenseNumber,
		IsVerified:             model.IsVerified,
		VerifiedAt:             model.VerifiedAt,
		IsActive:               model.IsActive,
		Status:                 string(model.Status),
		LastPingAt:             model.LastPingAt,
		CurrentIncidentID:      model.CurrentIncidentID,
		VehicleType:            model.VehicleType,
		VehicleNumber:          model.VehicleNumber,
		VehicleCapacity:        model.VehicleCapacity,
		TotalEmergencies:       model.TotalEmergencies,
		CompletedEmergencies:   model.CompletedEmergencies,
		AvgResponseTimeSeconds: model.AvgResponseTime.Seconds(),
		Rating:                 model.Rating,
		RatingCount:            model.RatingCount,
		ServiceRadiusMeters:    model.ServiceRadiusMeters,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
	}
	if pos := model.Position; pos != nil {
		lat, lng, at := pos.Latitude, pos.Longitude, pos.UpdatedAt
		resp.Latitude = &lat
		resp.Longitude = &lng
		resp.LocationUpdatedAt = &at
	}
	return resp
}

// CandidatesToResponses преобразует кандидатов в DTO, сохраняя порядок
func CandidatesToResponses(candidates geo.Candidates) []CandidateResponse {
	responses := make([]CandidateResponse, 0, len(candidates))
	for c := range candidates.All() {
		responses = append(responses, CandidateResponse{
			ProviderID:      c.ProviderID,
			DistanceMeters:  c.DistanceMeters,
			Latitude:        c.Position.Latitude,
			Longitude:       c.Position.Longitude,
			LocationUpdated: c.Position.UpdatedAt,
			ServiceTypes:    serviceTypesToStrings(c.ServiceTypes),
		})
	}
	return responses
}

func serviceTypesToStrings(types []models.ServiceType) []string {
	out := make([]string, 0, len(types))
	for _, st := range types {
		out = append(out, string(st))
	}
	return out
}
