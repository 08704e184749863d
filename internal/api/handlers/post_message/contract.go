package post_message

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/hiring/models"
)

type HiringService interface {
	PostMessage(ctx context.Context, id int64, actor domain.Actor, req *models.PostMessageRequest) (*models.ApplicationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
