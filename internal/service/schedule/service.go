package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	resourceRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/resource"
	scheduleRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-RentalService/internal/service/schedule/models"
)

// Service сервис для работы с расписанием слотов машин
type Service struct {
	scheduleRepo ScheduleRepository
	resourceRepo ResourceRepository
	defaults     domain.ScheduleDefaults
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	resourceRepo ResourceRepository,
	defaults domain.ScheduleDefaults,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		resourceRepo: resourceRepo,
		defaults:     defaults,
		logger:       logger,
	}
}

// Get возвращает действующее расписание машины
// Публичный метод - доступен всем
// Приоритет: машина > владелец > значения по умолчанию из конфигурации
func (s *Service) Get(ctx context.Context, resourceID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("Get: fetching schedule for resource=%d", resourceID)

	car, err := s.getResource(ctx, "Get", resourceID)
	if err != nil {
		return nil, err
	}

	effective, err := s.effective(ctx, "Get", car)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Get: resource=%d uses %s schedule", resourceID, models.Level(effective))
	return models.FromDomainSchedule(effective), nil
}

// Update сохраняет расписание машины или всех машин владельца
// Доступно владельцу машины и администратору
// Незаданные поля берутся из действующего расписания, итог валидируется целиком
func (s *Service) Update(ctx context.Context, resourceID int64, actor domain.Actor, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Update: schedule for resource=%d, ownerWide=%t by actor=%d", resourceID, req.OwnerWide, actor.ID)

	// 1. Получаем машину для проверки прав доступа
	car, err := s.getResource(ctx, "Update", resourceID)
	if err != nil {
		return nil, err
	}

	// 2. Проверяем права доступа (владелец или администратор)
	if car.OwnerID != actor.ID && !actor.IsAdmin() {
		s.logger.Warn("Update: actor=%d is not the owner of resource=%d", actor.ID, resourceID)
		return nil, ErrAccessDenied
	}

	// 3. Ищем расписание ровно того уровня, который меняем
	var levelResourceID *int64
	if !req.OwnerWide {
		levelResourceID = &car.ID
	}

	existing, err := s.scheduleRepo.GetByOwnerAndResource(ctx, car.OwnerID, levelResourceID)
	if err != nil && !errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
		s.logger.Error("Update: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	// 4. Новое расписание строится поверх действующего
	var target domain.ResourceSchedule
	if existing != nil {
		target = *existing
	} else {
		effective, err := s.effective(ctx, "Update", car)
		if err != nil {
			return nil, err
		}
		target = *effective
		target.ID = 0
		target.OwnerID = car.OwnerID
		target.ResourceID = levelResourceID
	}
	req.ApplyTo(&target)

	// 5. Валидируем итоговое расписание
	if err := target.Validate(); err != nil {
		s.logger.Warn("Update: validation failed for resource=%d: %v", resourceID, err)
		return nil, err
	}

	// 6. Сохраняем: обновление существующего или создание нового уровня
	var saved *domain.ResourceSchedule
	if existing != nil {
		saved, err = s.scheduleRepo.Update(ctx, existing.ID, &target)
	} else {
		saved, err = s.scheduleRepo.Create(ctx, &target)
	}
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrDuplicateSchedule) {
			s.logger.Warn("Update: schedule for owner=%d, resource=%v created concurrently", car.OwnerID, levelResourceID)
			return nil, ErrScheduleConflict
		}
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Update: successfully saved schedule id=%d (level: %s)", saved.ID, models.Level(saved))
	return models.FromDomainSchedule(saved), nil
}

// Вспомогательные методы

// effective возвращает расписание с учетом иерархии или значения по умолчанию
func (s *Service) effective(ctx context.Context, op string, car *domain.Car) (*domain.ResourceSchedule, error) {
	schedule, err := s.scheduleRepo.GetWithHierarchy(ctx, car.OwnerID, car.ID)
	if err == nil {
		return schedule, nil
	}
	if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
		return s.defaults.For(car.OwnerID, car.ID), nil
	}

	s.logger.Error("%s: failed to get schedule for resource=%d: %v", op, car.ID, err)
	return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
}

// getResource получает машину и конвертирует ошибку репозитория
func (s *Service) getResource(ctx context.Context, op string, id int64) (*domain.Car, error) {
	car, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceRepo.ErrCarNotFound) {
			s.logger.Warn("%s: resource id=%d not found", op, id)
			return nil, ErrResourceNotFound
		}
		s.logger.Error("%s: failed to get resource id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}
	return car, nil
}
