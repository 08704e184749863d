package models

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// ProposeRequest предложение ставки
// CustomerID обязателен, когда предложение делает владелец машины
type ProposeRequest struct {
	ResourceID   int64     `json:"resourceId" validate:"required,gt=0"`
	CustomerID   *int64    `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	ProposedRate float64   `json:"proposedRate" validate:"required,gt=0"`
	RateType     string    `json:"rateType" validate:"required,oneof=hourly daily"`
	StartAt      time.Time `json:"startAt" validate:"required"`
	EndAt        time.Time `json:"endAt" validate:"required"`
	Message      *string   `json:"message,omitempty" validate:"omitempty,max=2000"`
}

// RespondRequest ответ на последнее предложение
type RespondRequest struct {
	Action  string   `json:"action" validate:"required,oneof=accept reject counter"`
	Rate    *float64 `json:"rate,omitempty" validate:"omitempty,gt=0"`
	Message string   `json:"message,omitempty" validate:"max=2000"`
}

// CounterOfferResponse запись журнала предложений
type CounterOfferResponse struct {
	Proposer   string    `json:"proposer"`
	ProposerID int64     `json:"proposerId"`
	Rate       float64   `json:"rate"`
	Message    string    `json:"message,omitempty"`
	At         time.Time `json:"at"`
}

// NegotiationResponse ответ с данными переговоров
type NegotiationResponse struct {
	ID            int64                  `json:"id"`
	ResourceID    int64                  `json:"resourceId"`
	CustomerID    int64                  `json:"customerId"`
	OwnerID       int64                  `json:"ownerId"`
	InitiatedBy   string                 `json:"initiatedBy"`
	OriginalRate  float64                `json:"originalRate"`
	ProposedRate  float64                `json:"proposedRate"`
	RateType      string                 `json:"rateType"`
	StartAt       time.Time              `json:"startAt"`
	EndAt         time.Time              `json:"endAt"`
	Message       *string                `json:"message,omitempty"`
	Status        string                 `json:"status"`
	CounterOffers []CounterOfferResponse `json:"counterOffers"`
	ExpiresAt     time.Time              `json:"expiresAt"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// FromDomainNegotiation конвертирует domain модель в DTO
func FromDomainNegotiation(n *domain.Negotiation) *NegotiationResponse {
	if n == nil {
		return nil
	}

	resp := &NegotiationResponse{
		ID:            n.ID,
		ResourceID:    n.ResourceID,
		CustomerID:    n.CustomerID,
		OwnerID:       n.OwnerID,
		InitiatedBy:   string(n.Initiator()),
		OriginalRate:  n.OriginalRate,
		ProposedRate:  n.ProposedRate,
		RateType:      string(n.RateType),
		StartAt:       n.StartAt,
		EndAt:         n.EndAt,
		Message:       n.Message,
		Status:        string(n.Status),
		CounterOffers: make([]CounterOfferResponse, len(n.CounterOffers)),
		ExpiresAt:     n.ExpiresAt,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}

	for i, o := range n.CounterOffers {
		resp.CounterOffers[i] = CounterOfferResponse{
			Proposer:   string(o.Proposer),
			ProposerID: o.ProposerID,
			Rate:       o.Rate,
			Message:    o.Message,
			At:         o.At,
		}
	}

	return resp
}
