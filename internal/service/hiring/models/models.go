package models

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Request модели

// ApplyRequest отклик водителя на вакансию
type ApplyRequest struct {
	CoverLetter *string `json:"coverLetter,omitempty" validate:"omitempty,max=5000"`
}

// UpdateStatusRequest действие над откликом
type UpdateStatusRequest struct {
	Action string `json:"action" validate:"required,oneof=shortlist reject withdraw"`
}

// ScheduleInterviewRequest назначение или перенос собеседования
type ScheduleInterviewRequest struct {
	ScheduledAt     time.Time `json:"scheduledAt" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,gt=0,lte=480"`
	Location        string    `json:"location" validate:"max=500"`
}

// CompleteInterviewRequest итог собеседования
type CompleteInterviewRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback" validate:"max=2000"`
}

// CreateContractRequest условия контракта
type CreateContractRequest struct {
	Terms string `json:"terms" validate:"required,max=20000"`
}

// SignContractRequest подпись стороны
type SignContractRequest struct {
	SignatureURL string `json:"signatureUrl" validate:"required,url"`
}

// PostMessageRequest сообщение в переписке по отклику
type PostMessageRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// Response модели

// ApplicationResponse ответ с данными отклика
type ApplicationResponse struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"jobId"`
	DriverID    int64             `json:"driverId"`
	OwnerID     int64             `json:"ownerId"`
	Status      string            `json:"status"`
	CoverLetter *string           `json:"coverLetter,omitempty"`
	Interview   *domain.Interview `json:"interview,omitempty"`
	Contract    *domain.Contract  `json:"contract,omitempty"`
	Messages    []domain.Message  `json:"messages"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// FromDomainApplication конвертирует domain модель в DTO
func FromDomainApplication(a *domain.JobApplication) *ApplicationResponse {
	if a == nil {
		return nil
	}

	resp := &ApplicationResponse{
		ID:          a.ID,
		JobID:       a.JobID,
		DriverID:    a.DriverID,
		OwnerID:     a.OwnerID,
		Status:      string(a.Status),
		CoverLetter: a.CoverLetter,
		Interview:   a.Interview,
		Contract:    a.Contract,
		Messages:    a.Messages,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}

	if resp.Messages == nil {
		resp.Messages = []domain.Message{}
	}

	return resp
}
