package persistence

import (
	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/role"
	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/user"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/core/infrastructure/persistence/models"
)

func toDomainPermission(row *models.Permission) *permission.Permission {
	return &permission.Permission{
		ID:          row.ID,
		Category:    permission.Category(row.Category),
		Level:       row.Level,
		Description: row.Description,
	}
}

func toDomainRole(row *models.Role) *role.Role {
	return &role.Role{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toDomainUser(row *models.User) *user.User {
	return &user.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		Address:   row.Address,
		RoleID:    row.RoleID,
		PushToken: row.PushToken,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
