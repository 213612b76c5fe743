// Package access is the single authorization table for every mutating
// operation. Handlers and services ask it; nothing else branches on roles.
package access

import "equiplend/internal/domain"

type Operation string

const (
	OpCreateRequest   Operation = "borrow.create"
	OpApproveRequest  Operation = "borrow.approve"
	OpRejectRequest   Operation = "borrow.reject"
	OpRequestReturn   Operation = "borrow.request_return"
	OpConfirmReturn   Operation = "borrow.confirm_return"
	OpViewAllRequests Operation = "borrow.view_all"
	OpManageEquipment Operation = "equipment.manage"
	OpUploadImage     Operation = "upload.image"
	OpUpdateRole      Operation = "user.update_role"
	OpListUsers       Operation = "user.list"
	OpFullStatistics  Operation = "statistics.full"
)

var (
	anyRole  = []domain.UserRole{domain.RoleUser, domain.RoleModerator, domain.RoleAdmin}
	staff    = []domain.UserRole{domain.RoleModerator, domain.RoleAdmin}
	adminOne = []domain.UserRole{domain.RoleAdmin}
)

var table = map[Operation][]domain.UserRole{
	OpCreateRequest:   anyRole,
	OpApproveRequest:  staff,
	OpRejectRequest:   adminOne,
	OpRequestReturn:   staff, // owners are admitted by CanRequestReturn
	OpConfirmReturn:   staff,
	OpViewAllRequests: adminOne,
	OpManageEquipment: adminOne,
	OpUploadImage:     adminOne,
	OpUpdateRole:      adminOne,
	OpListUsers:       adminOne,
	OpFullStatistics:  adminOne,
}

// CanPerform reports whether role may invoke op. Unknown operations and
// roles are denied.
func CanPerform(role domain.UserRole, op Operation) bool {
	for _, r := range table[op] {
		if r == role {
			return true
		}
	}
	return false
}

// CanRequestReturn admits the owner of the request in addition to staff.
func CanRequestReturn(role domain.UserRole, actorID, ownerID int64) bool {
	if actorID != 0 && actorID == ownerID {
		return true
	}
	return CanPerform(role, OpRequestReturn)
}

// CanViewRequest admits the owner and staff.
func CanViewRequest(role domain.UserRole, actorID, ownerID int64) bool {
	return CanRequestReturn(role, actorID, ownerID)
}
