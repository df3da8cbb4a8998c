package repository

import (
	"context"
	"time"

	"propertydesk/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID           int64                       `gorm:"column:id;primaryKey"`
	Number       string                      `gorm:"column:number;type:varchar(20);uniqueIndex;not null"`
	Type         string                      `gorm:"column:type;type:varchar(20);not null"`
	Floor        int                         `gorm:"column:floor"`
	Capacity     int                         `gorm:"column:capacity;not null;default:1"`
	NightlyPrice float64                     `gorm:"column:nightly_price;not null;default:0"`
	WeeklyPrice  float64                     `gorm:"column:weekly_price;not null;default:0"`
	MonthlyPrice float64                     `gorm:"column:monthly_price;not null;default:0"`
	Equipment    datatypes.JSONSlice[string] `gorm:"column:equipment"`
	Status       string                      `gorm:"column:status;type:varchar(30);not null"`
	CreatedAt    time.Time                   `gorm:"column:created_at"`
	UpdatedAt    time.Time                   `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

// rows written by the old front desk still carry French status labels
func toDomainRoom(m roomModel) *domain.Room {
	return &domain.Room{
		ID:           m.ID,
		Number:       m.Number,
		Type:         domain.RoomType(m.Type),
		Floor:        m.Floor,
		Capacity:     m.Capacity,
		NightlyPrice: m.NightlyPrice,
		WeeklyPrice:  m.WeeklyPrice,
		MonthlyPrice: m.MonthlyPrice,
		Equipment:    m.Equipment,
		Status:       domain.ParseRoomStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toRoomModel(r *domain.Room) roomModel {
	status := r.Status
	if status == "" {
		status = domain.RoomAvailable
	}
	return roomModel{
		ID:           r.ID,
		Number:       r.Number,
		Type:         string(r.Type),
		Floor:        r.Floor,
		Capacity:     r.Capacity,
		NightlyPrice: r.NightlyPrice,
		WeeklyPrice:  r.WeeklyPrice,
		MonthlyPrice: r.MonthlyPrice,
		Equipment:    r.Equipment,
		Status:       string(status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	*room = *toDomainRoom(m)
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainRoom(m), nil
}

func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	var rows []roomModel
	if err := r.db.WithContext(ctx).Order("floor, number").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRoom(m))
	}
	return out, nil
}

// UpdateStatus sets the physical status of a room.
func (r *RoomRepository) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) error {
	tx := r.db.WithContext(ctx).Model(&roomModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now()})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RoomRepository) ListByStatus(ctx context.Context, status domain.RoomStatus) ([]domain.Room, error) {
	rooms, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	// filtered after normalisation so legacy labels match
	out := rooms[:0]
	for _, room := range rooms {
		if room.Status == status {
			out = append(out, room)
		}
	}
	return out, nil
}
