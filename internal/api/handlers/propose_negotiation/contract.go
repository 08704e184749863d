package propose_negotiation

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/negotiations/models"
)

type NegotiationService interface {
	Propose(ctx context.Context, actor domain.Actor, req *models.ProposeRequest) (*models.NegotiationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
