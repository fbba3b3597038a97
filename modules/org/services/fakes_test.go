package services

import (
	"context"
	"sort"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/role"
	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/user"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/org/domain/department"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

type userRepoFake struct {
	users map[uint]*user.User
}

func newUserRepoFake(users ...*user.User) *userRepoFake {
	f := &userRepoFake{users: make(map[uint]*user.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *userRepoFake) GetByID(_ context.Context, id uint) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, serrors.NewNotFoundError("user", id)
	}
	return u, nil
}

func (f *userRepoFake) List(_ context.Context, params *user.FindParams) ([]*user.User, error) {
	var out []*user.User
	for _, u := range f.users {
		if params != nil && params.DepartmentID != nil && !u.IsMemberOf(*params.DepartmentID) {
			continue
		}
		if params != nil && params.RoleID != nil && u.RoleID != *params.RoleID {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *userRepoFake) Create(_ context.Context, u *user.User) (*user.User, error) {
	u.ID = uint(len(f.users) + 1)
	f.users[u.ID] = u
	return u, nil
}

func (f *userRepoFake) Update(_ context.Context, u *user.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return serrors.NewNotFoundError("user", u.ID)
	}
	f.users[u.ID] = u
	return nil
}

func (f *userRepoFake) Delete(_ context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return serrors.NewNotFoundError("user", id)
	}
	delete(f.users, id)
	return nil
}

func (f *userRepoFake) SetPushToken(_ context.Context, id uint, token *string) error {
	u, ok := f.users[id]
	if !ok {
		return serrors.NewNotFoundError("user", id)
	}
	u.PushToken = token
	return nil
}

type roleRepoFake struct {
	roles map[uint]*role.Role
}

func newRoleRepoFake(roles ...*role.Role) *roleRepoFake {
	f := &roleRepoFake{roles: make(map[uint]*role.Role)}
	for _, r := range roles {
		f.roles[r.ID] = r
	}
	return f
}

func (f *roleRepoFake) GetByID(_ context.Context, id uint) (*role.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, serrors.NewNotFoundError("role", id)
	}
	return r, nil
}

func (f *roleRepoFake) GetByName(_ context.Context, name string) (*role.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, serrors.NewNotFoundError("role", 0)
}

func (f *roleRepoFake) List(_ context.Context, _ *role.FindParams) ([]*role.Role, error) {
	var out []*role.Role
	for _, r := range f.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *roleRepoFake) Create(_ context.Context, r *role.Role) (*role.Role, error) {
	r.ID = uint(len(f.roles) + 1)
	f.roles[r.ID] = r
	return r, nil
}

func (f *roleRepoFake) Update(_ context.Context, r *role.Role) error {
	if _, ok := f.roles[r.ID]; !ok {
		return serrors.NewNotFoundError("role", r.ID)
	}
	f.roles[r.ID] = r
	return nil
}

func (f *roleRepoFake) Delete(_ context.Context, id uint) error {
	if _, ok := f.roles[id]; !ok {
		return serrors.NewNotFoundError("role", id)
	}
	delete(f.roles, id)
	return nil
}

func (f *roleRepoFake) AttachPermission(_ context.Context, roleID uint, p *permission.Permission) error {
	r, ok := f.roles[roleID]
	if !ok {
		return serrors.NewNotFoundError("role", roleID)
	}
	r.SetPermission(p)
	return nil
}

func (f *roleRepoFake) DetachPermission(_ context.Context, roleID, permissionID uint) error {
	r, ok := f.roles[roleID]
	if !ok {
		return serrors.NewNotFoundError("role", roleID)
	}
	kept := r.Permissions[:0]
	for _, p := range r.Permissions {
		if p.ID != permissionID {
			kept = append(kept, p)
		}
	}
	r.Permissions = kept
	return nil
}

type deptRepoFake struct {
	departments map[uint]*department.Department
	nextID      uint
}

func newDeptRepoFake(departments ...*department.Department) *deptRepoFake {
	f := &deptRepoFake{departments: make(map[uint]*department.Department)}
	for _, d := range departments {
		f.departments[d.ID] = d
		if d.ID > f.nextID {
			f.nextID = d.ID
		}
	}
	return f
}

func (f *deptRepoFake) GetByID(_ context.Context, id uint) (*department.Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, serrors.NewNotFoundError("department", id)
	}
	return d, nil
}

func (f *deptRepoFake) GetAll(_ context.Context) ([]*department.Department, error) {
	var out []*department.Department
	for _, d := range f.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *deptRepoFake) List(ctx context.Context, params *department.FindParams) ([]*department.Department, error) {
	all, _ := f.GetAll(ctx)
	if params == nil || params.ParentID == nil {
		return all, nil
	}
	var out []*department.Department
	for _, d := range all {
		if d.ParentID != nil && *d.ParentID == *params.ParentID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *deptRepoFake) Create(_ context.Context, d *department.Department) (*department.Department, error) {
	f.nextID++
	d.ID = f.nextID
	f.departments[d.ID] = d
	return d, nil
}

func (f *deptRepoFake) Update(_ context.Context, d *department.Department) error {
	if _, ok := f.departments[d.ID]; !ok {
		return serrors.NewNotFoundError("department", d.ID)
	}
	f.departments[d.ID] = d
	return nil
}

func (f *deptRepoFake) Delete(_ context.Context, id uint) error {
	if _, ok := f.departments[id]; !ok {
		return serrors.NewNotFoundError("department", id)
	}
	delete(f.departments, id)
	return nil
}

func (f *deptRepoFake) AddMember(_ context.Context, departmentID, userID uint) error {
	d, ok := f.departments[departmentID]
	if !ok {
		return serrors.NewNotFoundError("department", departmentID)
	}
	if !d.HasMember(userID) {
		d.MemberIDs = append(d.MemberIDs, userID)
	}
	return nil
}

func (f *deptRepoFake) RemoveMember(_ context.Context, departmentID, userID uint) error {
	d, ok := f.departments[departmentID]
	if !ok {
		return serrors.NewNotFoundError("department", departmentID)
	}
	kept := d.MemberIDs[:0]
	for _, id := range d.MemberIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	d.MemberIDs = kept
	return nil
}

func (f *deptRepoFake) ManagedBy(_ context.Context, userID uint) ([]*department.Department, error) {
	var out []*department.Department
	for _, d := range f.departments {
		if d.ManagerID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type auditRecorderFake struct {
	records []string
}

func (f *auditRecorderFake) Record(_ context.Context, _ uint, action, targetType string, _ uint, _ map[string]any) {
	f.records = append(f.records, targetType+"."+action)
}
