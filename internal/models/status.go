package models

import "strings"

// IncidentStatus - этап жизненного цикла инцидента
type IncidentStatus string

const (
	IncidentPending    IncidentStatus = "PENDING"
	IncidentDispatched IncidentStatus = "DISPATCHED"
	IncidentEnRoute    IncidentStatus = "EN_ROUTE"
	IncidentOnSite     IncidentStatus = "ON_SITE"
	IncidentResolved   IncidentStatus = "RESOLVED"
	IncidentCancelled  IncidentStatus = "CANCELLED"
)

// incidentFlow - порядок прямых переходов; CANCELLED обрабатывается отдельно
var incidentFlow = map[IncidentStatus]IncidentStatus{
	IncidentPending:    IncidentDispatched,
	IncidentDispatched: IncidentEnRoute,
	IncidentEnRoute:    IncidentOnSite,
	IncidentOnSite:     IncidentResolved,
}

func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentPending, IncidentDispatched, IncidentEnRoute, IncidentOnSite,
		IncidentResolved, IncidentCancelled:
		return true
	}
	return false
}

func (s IncidentStatus) Terminal() bool {
	return s == IncidentResolved || s == IncidentCancelled
}

// HoldsProvider сообщает, должен ли в этом статусе быть назначен исполнитель
func (s IncidentStatus) HoldsProvider() bool {
	return s == IncidentDispatched || s == IncidentEnRoute || s == IncidentOnSite
}

// CanTransitionIncident проверяет допустимость перехода from -> to.
// Повторный вход в тот же статус переходом не считается.
func CanTransitionIncident(from, to IncidentStatus) bool {
	if !from.Valid() || !to.Valid() || from.Terminal() || from == to {
		return false
	}
	if to == IncidentCancelled {
		return true
	}
	return incidentFlow[from] == to
}

// ProviderStatus - доступность исполнителя
type ProviderStatus string

const (
	ProviderOffline     ProviderStatus = "OFFLINE"
	ProviderAvailable   ProviderStatus = "AVAILABLE"
	ProviderOnDuty      ProviderStatus = "ON_DUTY"
	ProviderInEmergency ProviderStatus = "IN_EMERGENCY"
	ProviderBreak       ProviderStatus = "BREAK"
)

func (s ProviderStatus) Valid() bool {
	switch s {
	case ProviderOffline, ProviderAvailable, ProviderOnDuty, ProviderInEmergency, ProviderBreak:
		return true
	}
	return false
}

// CanAcceptAssignment - исполнитель может получить новый инцидент
func (s ProviderStatus) CanAcceptAssignment() bool {
	return s == ProviderAvailable || s == ProviderOnDuty
}

// Actor - инициатор смены статуса исполнителя
type Actor int

const (
	// ActorClient - сам исполнитель или внешний фид доступности
	ActorClient Actor = iota
	// ActorDispatcher - координатор назначений
	ActorDispatcher
)

var providerTransitions = map[ProviderStatus][]ProviderStatus{
	ProviderOffline:   {ProviderAvailable},
	ProviderAvailable: {ProviderOffline, ProviderOnDuty, ProviderBreak},
	ProviderOnDuty:    {ProviderAvailable, ProviderBreak},
	ProviderBreak:     {ProviderAvailable, ProviderOnDuty},
}

// CanTransitionProvider проверяет переход статуса исполнителя.
// IN_EMERGENCY входит и выходит только через координатора.
func CanTransitionProvider(from, to ProviderStatus, actor Actor) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if from == ProviderInEmergency || to == ProviderInEmergency {
		if actor != ActorDispatcher {
			return false
		}
		if to == ProviderInEmergency {
			return from.CanAcceptAssignment()
		}
		return to == ProviderAvailable
	}
	for _, next := range providerTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NormalizeTag приводит входящий тег перечисления к каноническому виду.
// Используется только при приёме данных извне.
func NormalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}
