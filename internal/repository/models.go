package repository

import (
	"time"

	"equiplend/internal/domain"

	"gorm.io/gorm"
)

// Row models carry the snake_case schema. The to*/from* pairs below are the
// only place columns are translated to the camelCase domain structs.

type userModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	IdentityID string    `gorm:"column:identity_id;size:191;not null;uniqueIndex"`
	Email      string    `gorm:"column:email;size:320;not null;index"`
	Name       string    `gorm:"column:name;size:200"`
	Role       string    `gorm:"column:role;size:16;not null;default:USER;index"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type equipmentModel struct {
	ID                int64          `gorm:"column:id;primaryKey"`
	Name              string         `gorm:"column:name;size:200;not null"`
	Category          string         `gorm:"column:category;size:100;not null;index"`
	Description       *string        `gorm:"column:description;type:text"`
	ImageURL          *string        `gorm:"column:image_url"`
	Location          *string        `gorm:"column:location;size:200"`
	SerialNumber      *string        `gorm:"column:serial_number;size:120;uniqueIndex"`
	Condition         *string        `gorm:"column:condition;size:60"`
	TotalQuantity     int            `gorm:"column:total_quantity;not null;default:0;check:chk_equipment_total,total_quantity >= 0"`
	AvailableQuantity int            `gorm:"column:available_quantity;not null;default:0;check:chk_equipment_available,available_quantity >= 0 AND available_quantity <= total_quantity"`
	Status            string         `gorm:"column:status;size:20;not null;default:AVAILABLE;index"`
	CreatedBy         *int64         `gorm:"column:created_by"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (equipmentModel) TableName() string { return "equipment" }

type borrowRequestModel struct {
	ID                int64      `gorm:"column:id;primaryKey"`
	EquipmentID       int64      `gorm:"column:equipment_id;not null;index"`
	RequesterID       int64      `gorm:"column:requester_id;not null;index"`
	Quantity          int        `gorm:"column:quantity;not null;check:chk_borrow_quantity,quantity >= 1"`
	Purpose           *string    `gorm:"column:purpose;type:text"`
	StartDate         time.Time  `gorm:"column:start_date;not null"`
	EndDate           time.Time  `gorm:"column:end_date;not null"`
	Notes             *string    `gorm:"column:notes;type:text"`
	Status            string     `gorm:"column:status;size:20;not null;index"`
	ApprovedBy        *int64     `gorm:"column:approved_by"`
	ApprovedAt        *time.Time `gorm:"column:approved_at"`
	RejectionReason   *string    `gorm:"column:rejection_reason;type:text"`
	ReturnRequestedAt *time.Time `gorm:"column:return_requested_at"`
	ActualReturnDate  *time.Time `gorm:"column:actual_return_date"`
	ReturnConfirmedBy *int64     `gorm:"column:return_confirmed_by"`
	ReturnConfirmedAt *time.Time `gorm:"column:return_confirmed_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;index"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`

	Equipment *equipmentModel `gorm:"foreignKey:EquipmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Requester *userModel      `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (borrowRequestModel) TableName() string { return "borrow_requests" }

// AutoMigrate creates or updates the three tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{}, &equipmentModel{}, &borrowRequestModel{})
}

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		ID:         m.ID,
		IdentityID: m.IdentityID,
		Email:      m.Email,
		Name:       m.Name,
		Role:       domain.UserRole(m.Role),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	return userModel{
		ID:         u.ID,
		IdentityID: u.IdentityID,
		Email:      normalizeEmail(u.Email),
		Name:       u.Name,
		Role:       string(u.Role),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toDomainEquipment(m equipmentModel) *domain.Equipment {
	return &domain.Equipment{
		ID:                m.ID,
		Name:              m.Name,
		Category:          m.Category,
		Description:       deref(m.Description),
		ImageURL:          deref(m.ImageURL),
		Location:          deref(m.Location),
		SerialNumber:      deref(m.SerialNumber),
		Condition:         deref(m.Condition),
		TotalQuantity:     m.TotalQuantity,
		AvailableQuantity: m.AvailableQuantity,
		Status:            domain.EquipmentStatus(m.Status),
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toEquipmentModel(e *domain.Equipment) equipmentModel {
	return equipmentModel{
		ID:                e.ID,
		Name:              e.Name,
		Category:          e.Category,
		Description:       nullable(e.Description),
		ImageURL:          nullable(e.ImageURL),
		Location:          nullable(e.Location),
		SerialNumber:      nullable(e.SerialNumber),
		Condition:         nullable(e.Condition),
		TotalQuantity:     e.TotalQuantity,
		AvailableQuantity: e.AvailableQuantity,
		Status:            string(e.Status),
		CreatedBy:         e.CreatedBy,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func toDomainBorrowRequest(m borrowRequestModel) *domain.BorrowRequest {
	return &domain.BorrowRequest{
		ID:                m.ID,
		EquipmentID:       m.EquipmentID,
		RequesterID:       m.RequesterID,
		Quantity:          m.Quantity,
		Purpose:           deref(m.Purpose),
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Notes:             deref(m.Notes),
		Status:            domain.BorrowStatus(m.Status),
		ApprovedBy:        m.ApprovedBy,
		ApprovedAt:        m.ApprovedAt,
		RejectionReason:   deref(m.RejectionReason),
		ReturnRequestedAt: m.ReturnRequestedAt,
		ActualReturnDate:  m.ActualReturnDate,
		ReturnConfirmedBy: m.ReturnConfirmedBy,
		ReturnConfirmedAt: m.ReturnConfirmedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toBorrowRequestModel(b *domain.BorrowRequest) borrowRequestModel {
	return borrowRequestModel{
		ID:                b.ID,
		EquipmentID:       b.EquipmentID,
		RequesterID:       b.RequesterID,
		Quantity:          b.Quantity,
		Purpose:           nullable(b.Purpose),
		StartDate:         b.StartDate.UTC(),
		EndDate:           b.EndDate.UTC(),
		Notes:             nullable(b.Notes),
		Status:            string(b.Status),
		ApprovedBy:        b.ApprovedBy,
		ApprovedAt:        b.ApprovedAt,
		RejectionReason:   nullable(b.RejectionReason),
		ReturnRequestedAt: b.ReturnRequestedAt,
		ActualReturnDate:  b.ActualReturnDate,
		ReturnConfirmedBy: b.ReturnConfirmedBy,
		ReturnConfirmedAt: b.ReturnConfirmedAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

func statusStrings(in []domain.BorrowStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
