package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/pkg/saga"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service struct {
	tasks    TaskRepository
	rooms    RoomRepository
	notifier RoomNotifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(tasks TaskRepository, rooms RoomRepository, notifier RoomNotifier, log logrus.FieldLogger) *Service {
	return &Service{tasks: tasks, rooms: rooms, notifier: notifier, log: logger.OrDiscard(log), now: time.Now}
}

func (s *Service) Create(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	kind := domain.TaskKind(strings.ToUpper(string(req.Kind)))
	if kind != domain.TaskCleaning && kind != domain.TaskMaintenance {
		return nil, ErrValidation
	}
	if _, err := s.rooms.GetByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	t := &domain.Task{
		RoomID:      req.RoomID,
		Kind:        kind,
		Status:      domain.TaskOpen,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListOpen returns open tasks, for one room or all rooms when roomID is 0.
func (s *Service) ListOpen(ctx context.Context, roomID int64) ([]domain.Task, error) {
	list, err := s.tasks.ListOpen(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Task{}
	}
	return list, nil
}

// Complete closes a task. Finishing the cleaning of a room waiting for it
// makes the room AVAILABLE again.
func (s *Service) Complete(ctx context.Context, id string, userID int64) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TaskOpen {
		return nil, ErrAlreadyClosed
	}
	room, err := s.rooms.GetByID(ctx, t.RoomID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	prev := *t
	now := s.now()
	t.Status = domain.TaskDone
	t.CompletedAt = &now
	if userID > 0 {
		t.CompletedBy = &userID
	}

	run := saga.New("complete_task", s.log).Add(saga.Step{
		Name: "close_task",
		Do:   func(ctx context.Context) error { return s.tasks.Update(ctx, t) },
		Undo: func(ctx context.Context) error { return s.tasks.Update(ctx, &prev) },
	})
	freed := t.Kind == domain.TaskCleaning && room != nil && room.Status == domain.RoomPendingCleaning
	if freed {
		run.Add(saga.Step{
			Name: "room_available",
			Do:   func(ctx context.Context) error { return s.rooms.UpdateStatus(ctx, room.ID, domain.RoomAvailable) },
			Undo: func(ctx context.Context) error { return s.rooms.UpdateStatus(ctx, room.ID, domain.RoomPendingCleaning) },
		})
	}
	if err := run.Run(ctx); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"task_id": t.ID, "room_id": t.RoomID, "room_freed": freed}).Info("task completed")
	if freed && s.notifier != nil {
		s.notifier.RoomChanged(ctx, room.ID)
	}
	return t, nil
}
