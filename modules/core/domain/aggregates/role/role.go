package role

import (
	"fmt"
	"time"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
)

// Role owns at most one permission per category. The catalog contract
// (LevelFor, HasLevel) resolves against that owned set.
type Role struct {
	ID          uint
	Name        string
	Permissions []*permission.Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(name string) (*Role, error) {
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}
	return &Role{Name: name}, nil
}

// PermissionFor returns the role's entry for category, nil when absent.
func (r *Role) PermissionFor(category permission.Category) *permission.Permission {
	for _, p := range r.Permissions {
		if p.Category == category {
			return p
		}
	}
	return nil
}

// LevelFor resolves the role's level in category, 0 when no entry exists.
func (r *Role) LevelFor(category permission.Category) int {
	if p := r.PermissionFor(category); p != nil {
		return p.Level
	}
	return 0
}

func (r *Role) HasLevel(category permission.Category, min int) bool {
	return r.LevelFor(category) >= min
}

// SetPermission replaces the role's entry for p's category. The one-per-category
// invariant is enforced here, not by storage.
func (r *Role) SetPermission(p *permission.Permission) {
	for i, existing := range r.Permissions {
		if existing.Category == p.Category {
			r.Permissions[i] = p
			return
		}
	}
	r.Permissions = append(r.Permissions, p)
}
