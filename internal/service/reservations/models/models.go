package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// TransitionRequest запрос на смену статуса бронирования
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed rejected active completed cancelled"`
	Note   string `json:"note,omitempty" validate:"max=500"`
}

// CancelRequest запрос на отмену бронирования
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// RescheduleRequest запрос на перенос бронирования
type RescheduleRequest struct {
	StartAt time.Time `json:"startAt" validate:"required"`
	EndAt   time.Time `json:"endAt" validate:"required"`
}

// Window окно переноса
func (r *RescheduleRequest) Window() domain.Window {
	return domain.Window{Start: r.StartAt, End: r.EndAt}
}

// ListByCustomerRequest запрос на получение бронирований клиента
type ListByCustomerRequest struct {
	CustomerID int64
	Status     *string
}

// ListByResourceRequest запрос на получение бронирований машины владельцем
type ListByResourceRequest struct {
	ResourceID      int64
	Status          *string    // Фильтр по статусу (опционально)
	From            *time.Time // Начало периода (опционально)
	To              *time.Time // Конец периода (опционально)
	IncludeInactive bool       // Включить завершенные и отмененные
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListByResourceRequest) ToDomainFilter() (domain.ReservationFilter, error) {
	filter := domain.ReservationFilter{
		ResourceID:      r.ResourceID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	ResourceID int64     `json:"resourceId"`
	CustomerID int64     `json:"customerId"`
	OwnerID    int64     `json:"ownerId"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	Status     string    `json:"status"`

	// Стоимость, только для аренды
	RateType           string                     `json:"rateType,omitempty"`
	Rate               *float64                   `json:"rate,omitempty"`
	TotalHours         *float64                   `json:"totalHours,omitempty"`
	TotalDays          *int                       `json:"totalDays,omitempty"`
	TimeSlots          []domain.TimeSlot          `json:"timeSlots,omitempty"`
	AdditionalServices []domain.AdditionalService `json:"additionalServices,omitempty"`
	ServicesAmount     float64                    `json:"servicesAmount"`
	TotalAmount        float64                    `json:"totalAmount"`
	OriginalAmount     *float64                   `json:"originalAmount,omitempty"`
	IsNegotiated       bool                       `json:"isNegotiated"`
	NegotiationID      *int64                     `json:"negotiationId,omitempty"`
	Deposit            DepositResponse            `json:"deposit"`

	StatusHistory []domain.StatusHistoryEntry `json:"statusHistory"`
	Cancellation  *domain.Cancellation        `json:"cancellation,omitempty"`
	Notes         *string                     `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DepositResponse залог
type DepositResponse struct {
	Amount float64 `json:"amount"`
	Paid   bool    `json:"paid"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// CancelResponse ответ на отмену с суммой возврата
type CancelResponse struct {
	Reservation  ReservationResponse `json:"reservation"`
	RefundAmount float64             `json:"refundAmount"`
}

// CalendarEntryResponse интервал календаря занятости
type CalendarEntryResponse struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	State         string    `json:"state"`
	ReservationID *int64    `json:"reservationId,omitempty"`
}

// AvailabilityResponse календарь занятости машины за период
type AvailabilityResponse struct {
	ResourceID int64                   `json:"resourceId"`
	From       time.Time               `json:"from"`
	To         time.Time               `json:"to"`
	Entries    []CalendarEntryResponse `json:"entries"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		Kind:               string(r.Kind),
		ResourceID:         r.ResourceID,
		CustomerID:         r.CustomerID,
		OwnerID:            r.OwnerID,
		StartAt:            r.StartAt,
		EndAt:              r.EndAt,
		Status:             string(r.Status),
		RateType:           string(r.RateType),
		Rate:               r.Rate,
		TotalHours:         r.TotalHours,
		TotalDays:          r.TotalDays,
		TimeSlots:          r.TimeSlots,
		AdditionalServices: r.AdditionalServices,
		ServicesAmount:     r.ServicesAmount,
		TotalAmount:        r.TotalAmount,
		OriginalAmount:     r.OriginalAmount,
		IsNegotiated:       r.IsNegotiated,
		NegotiationID:      r.NegotiationID,
		Deposit:            DepositResponse{Amount: r.Deposit.Amount, Paid: r.Deposit.Paid},
		StatusHistory:      r.StatusHistory,
		Cancellation:       r.Cancellation,
		Notes:              r.Notes,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if resp.StatusHistory == nil {
		resp.StatusHistory = []domain.StatusHistoryEntry{}
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		if item := FromDomainReservation(r); item != nil {
			resp.Reservations = append(resp.Reservations, *item)
		}
	}

	return resp
}

// FromDomainCalendar конвертирует календарь занятости в DTO
func FromDomainCalendar(resourceID int64, from, to time.Time, entries []domain.CalendarEntry) *AvailabilityResponse {
	resp := &AvailabilityResponse{
		ResourceID: resourceID,
		From:       from,
		To:         to,
		Entries:    make([]CalendarEntryResponse, len(entries)),
	}

	for i, e := range entries {
		resp.Entries[i] = CalendarEntryResponse{
			Start:         e.Start,
			End:           e.End,
			State:         string(e.State),
			ReservationID: e.ReservationID,
		}
	}

	return resp
}

// ToDomainReservationStatus конвертирует строку в domain.ReservationStatus с валидацией
func ToDomainReservationStatus(status string) (domain.ReservationStatus, error) {
	s := domain.ReservationStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
