package apply_to_job

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
)

type HiringService interface {
	Apply(ctx context.Context, jobID int64, actor domain.Actor, req *models.ApplyRequest) (*models.ApplicationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
