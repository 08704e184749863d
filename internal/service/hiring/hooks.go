package hiring

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/aftercommit"
)

// notifyHook оборачивает уведомление в хук
func (s *Service) notifyHook(n domain.Notification) aftercommit.Hook {
	return aftercommit.Hook{
		Name: "notify." + string(n.Type),
		Fn: func(ctx context.Context) error {
			return s.notifier.Notify(ctx, n)
		},
	}
}
