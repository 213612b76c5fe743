package domain

import "time"

type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "AVAILABLE"
	EquipmentBorrowed    EquipmentStatus = "BORROWED"
	EquipmentMaintenance EquipmentStatus = "MAINTENANCE"
	EquipmentRetired     EquipmentStatus = "RETIRED"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentAvailable, EquipmentBorrowed, EquipmentMaintenance, EquipmentRetired:
		return true
	}
	return false
}

// Manual reports whether the status was set by an admin and must survive
// quantity recomputation.
func (s EquipmentStatus) Manual() bool {
	return s == EquipmentMaintenance || s == EquipmentRetired
}

type Equipment struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Description       string          `json:"description,omitempty"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	Location          string          `json:"location,omitempty"`
	SerialNumber      string          `json:"serialNumber,omitempty"`
	Condition         string          `json:"condition,omitempty"`
	TotalQuantity     int             `json:"totalQuantity"`
	AvailableQuantity int             `json:"availableQuantity"`
	Status            EquipmentStatus `json:"status"`
	CreatedBy         *int64          `json:"createdBy,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// StatusAfterApprove is the derived status once quantity has been handed out.
func StatusAfterApprove(current EquipmentStatus, available int) EquipmentStatus {
	if current.Manual() {
		return current
	}
	if available > 0 {
		return EquipmentAvailable
	}
	return EquipmentBorrowed
}

// StatusAfterReturn is the derived status once quantity has come back.
// The item only reads AVAILABLE again when every unit is back on the shelf.
func StatusAfterReturn(current EquipmentStatus, available, total int) EquipmentStatus {
	if current.Manual() {
		return current
	}
	if available >= total {
		return EquipmentAvailable
	}
	return EquipmentBorrowed
}

// EquipmentPatch carries the fields of a partial update. Nil means unchanged.
type EquipmentPatch struct {
	Name          *string
	Category      *string
	Description   *string
	ImageURL      *string
	Location      *string
	SerialNumber  *string
	Condition     *string
	TotalQuantity *int
	Status        *EquipmentStatus
}
