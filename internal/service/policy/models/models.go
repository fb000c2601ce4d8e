package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Source показывает, на каком уровне иерархии найдена политика
type Source string

const (
	SourceService  Source = "service"
	SourceLocation Source = "location"
	SourceDefault  Source = "default"
)

// Request модели

// GetPolicyRequest запрос на получение действующей политики
type GetPolicyRequest struct {
	LocationID int64  `json:"locationId"`
	ServiceID  *int64 `json:"serviceId,omitempty"` // nil = политика всей локации
}

// UpdatePolicyRequest запрос на создание или обновление политики
// Все параметры опциональны - обновляются только переданные значения
type UpdatePolicyRequest struct {
	LocationID         int64  `json:"locationId"`
	ServiceID          *int64 `json:"serviceId,omitempty"`
	GranularityMinutes *int   `json:"granularityMinutes,omitempty"`
	MinLeadMinutes     *int   `json:"minLeadMinutes,omitempty"`
	AdvanceBookingDays *int   `json:"advanceBookingDays,omitempty"`
	MaxSuggestions     *int   `json:"maxSuggestions,omitempty"`
}

// ApplyToPolicy применяет переданные значения к политике
func (r *UpdatePolicyRequest) ApplyToPolicy(p *domain.SchedulingPolicy) {
	if r.GranularityMinutes != nil {
		p.GranularityMinutes = *r.GranularityMinutes
	}
	if r.MinLeadMinutes != nil {
		p.MinLeadMinutes = *r.MinLeadMinutes
	}
	if r.AdvanceBookingDays != nil {
		p.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	if r.MaxSuggestions != nil {
		p.MaxSuggestions = *r.MaxSuggestions
	}
}

// IsEmpty возвращает true, если не передано ни одного параметра
func (r *UpdatePolicyRequest) IsEmpty() bool {
	return r.GranularityMinutes == nil && r.MinLeadMinutes == nil &&
		r.AdvanceBookingDays == nil && r.MaxSuggestions == nil
}

// Response модели

// PolicyResponse ответ с данными политики
type PolicyResponse struct {
	ID                 *int64     `json:"id,omitempty"` // nil для политики по умолчанию
	LocationID         int64      `json:"locationId"`
	ServiceID          *int64     `json:"serviceId,omitempty"`
	GranularityMinutes int        `json:"granularityMinutes"`
	MinLeadMinutes     int        `json:"minLeadMinutes"`
	AdvanceBookingDays int        `json:"advanceBookingDays"`
	MaxSuggestions     int        `json:"maxSuggestions"`
	Source             Source     `json:"source"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}

// PolicyListResponse ответ со списком политик локации
type PolicyListResponse struct {
	Policies []PolicyResponse `json:"policies"`
}

// Методы конвертации

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p *domain.SchedulingPolicy, source Source) *PolicyResponse {
	if p == nil {
		return nil
	}

	resp := &PolicyResponse{
		LocationID:         p.LocationID,
		ServiceID:          p.ServiceID,
		GranularityMinutes: p.GranularityMinutes,
		MinLeadMinutes:     p.MinLeadMinutes,
		AdvanceBookingDays: p.AdvanceBookingDays,
		MaxSuggestions:     p.MaxSuggestions,
		Source:             source,
	}

	if source != SourceDefault {
		id := p.ID
		createdAt := p.CreatedAt
		updatedAt := p.UpdatedAt
		resp.ID = &id
		resp.CreatedAt = &createdAt
		resp.UpdatedAt = &updatedAt
	}

	return resp
}

// SourceOf определяет уровень сохраненной политики
func SourceOf(p *domain.SchedulingPolicy) Source {
	if p.IsLocationWide() {
		return SourceLocation
	}
	return SourceService
}

// FromDomainPolicyList конвертирует список политик в DTO
func FromDomainPolicyList(policies []*domain.SchedulingPolicy) *PolicyListResponse {
	resp := &PolicyListResponse{Policies: make([]PolicyResponse, 0, len(policies))}
	for _, p := range policies {
		resp.Policies = append(resp.Policies, *FromDomainPolicy(p, SourceOf(p)))
	}
	return resp
}
