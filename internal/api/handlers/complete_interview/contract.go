package complete_interview

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
)

type HiringService interface {
	CompleteInterview(ctx context.Context, id int64, actor domain.Actor, req *models.CompleteInterviewRequest) (*models.ApplicationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
