package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/role"
	"github.com/iota-uz/taskdesk/modules/core/domain/aggregates/user"
	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/org/domain/department"
	"github.com/iota-uz/taskdesk/pkg/serrors"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type permRepoFake struct {
	perms  map[uint]*permission.Permission
	nextID uint
}

func newPermRepoFake(perms ...*permission.Permission) *permRepoFake {
	f := &permRepoFake{perms: make(map[uint]*permission.Permission)}
	for _, p := range perms {
		f.perms[p.ID] = p
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *permRepoFake) GetByID(_ context.Context, id uint) (*permission.Permission, error) {
	p, ok := f.perms[id]
	if !ok {
		return nil, serrors.NewNotFoundError("permission", id)
	}
	return p, nil
}

func (f *permRepoFake) GetByCategoryLevel(_ context.Context, category permission.Category, level int) (*permission.Permission, error) {
	for _, p := range f.perms {
		if p.Category == category && p.Level == level {
			return p, nil
		}
	}
	return nil, serrors.NewNotFoundError("permission", 0)
}

func (f *permRepoFake) List(_ context.Context, params *permission.FindParams) ([]*permission.Permission, error) {
	var out []*permission.Permission
	for _, p := range f.perms {
		if params != nil && params.Category != nil && p.Category != *params.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *permRepoFake) Create(_ context.Context, p *permission.Permission) (*permission.Permission, error) {
	f.nextID++
	p.ID = f.nextID
	f.perms[p.ID] = p
	return p, nil
}

func (f *permRepoFake) Update(_ context.Context, p *permission.Permission) error {
	if _, ok := f.perms[p.ID]; !ok {
		return serrors.NewNotFoundError("permission", p.ID)
	}
	f.perms[p.ID] = p
	return nil
}

func (f *permRepoFake) Delete(_ context.Context, id uint) error {
	if _, ok := f.perms[id]; !ok {
		return serrors.NewNotFoundError("permission", id)
	}
	delete(f.perms, id)
	return nil
}

type roleRepoFake struct {
	roles  map[uint]*role.Role
	nextID uint
}

func newRoleRepoFake(roles ...*role.Role) *roleRepoFake {
	f := &roleRepoFake{roles: make(map[uint]*role.Role)}
	for _, r := range roles {
		f.roles[r.ID] = r
		if r.ID > f.nextID {
			f.nextID = r.ID
		}
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
	f.nextID++
	r.ID = f.nextID
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

type userRepoFake struct {
	users  map[uint]*user.User
	nextID uint
}

func newUserRepoFake(users ...*user.User) *userRepoFake {
	f := &userRepoFake{users: make(map[uint]*user.User)}
	for _, u := range users {
		f.users[u.ID] = u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
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
	f.nextID++
	u.ID = f.nextID
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

type deptRepoFake struct {
	departments map[uint]*department.Department
}

func newDeptRepoFake(departments ...*department.Department) *deptRepoFake {
	f := &deptRepoFake{departments: make(map[uint]*department.Department)}
	for _, d := range departments {
		f.departments[d.ID] = d
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

func (f *deptRepoFake) List(ctx context.Context, _ *department.FindParams) ([]*department.Department, error) {
	return f.GetAll(ctx)
}

func (f *deptRepoFake) Create(_ context.Context, d *department.Department) (*department.Department, error) {
	f.departments[d.ID] = d
	return d, nil
}

func (f *deptRepoFake) Update(_ context.Context, d *department.Department) error {
	f.departments[d.ID] = d
	return nil
}

func (f *deptRepoFake) Delete(_ context.Context, id uint) error {
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

// authzFake resolves levels from a per-actor table and allows any department
// in scope[actorID].
type authzFake struct {
	levels map[uint]map[permission.Category]int
	scope  map[uint][]uint
}

func (f *authzFake) LevelFor(_ context.Context, actorID uint, category permission.Category) (int, error) {
	return f.levels[actorID][category], nil
}

func (f *authzFake) Authorize(_ context.Context, actorID uint, category permission.Category, minLevel int, targetDeptID *uint) error {
	level := f.levels[actorID][category]
	if level < minLevel {
		return serrors.NewForbiddenError(string(category), minLevel, level)
	}
	if targetDeptID == nil {
		return nil
	}
	for _, id := range f.scope[actorID] {
		if id == *targetDeptID {
			return nil
		}
	}
	return serrors.NewScopeError(*targetDeptID)
}

type auditFake struct {
	records []string
}

func (f *auditFake) Record(_ context.Context, _ uint, action, targetType string, _ uint, _ map[string]any) {
	f.records = append(f.records, targetType+"."+action)
}
