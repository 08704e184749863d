package get_negotiation

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/negotiations/models"
)

type NegotiationService interface {
	Get(ctx context.Context, id int64, actor domain.Actor) (*models.NegotiationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
