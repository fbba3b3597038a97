package permission

import "fmt"

// Category is the domain of authorization a permission level applies to.
type Category string

const (
	CategoryDepartments  Category = "Departments"
	CategoryUsers        Category = "Users"
	CategoryRoles        Category = "Roles"
	CategoryPermissions  Category = "Permissions"
	CategoryTasks        Category = "Tasks"
	CategoryComments     Category = "Comments"
	CategoryActivityLogs Category = "ActivityLogs"
)

// AllCategories is the closed set of categories. Every role carries exactly
// one permission per entry.
var AllCategories = []Category{
	CategoryDepartments,
	CategoryUsers,
	CategoryRoles,
	CategoryPermissions,
	CategoryTasks,
	CategoryComments,
	CategoryActivityLogs,
}

func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Permission struct {
	ID          uint
	Category    Category
	Level       int
	Description string
}

func New(category Category, level int, description string) (*Permission, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("unknown permission category %q", category)
	}
	if level < 0 {
		return nil, fmt.Errorf("permission level must be non-negative, got %d", level)
	}
	return &Permission{
		Category:    category,
		Level:       level,
		Description: description,
	}, nil
}

// Nothing is the level-0 entry seeded for every category of a new role.
func Nothing(category Category) *Permission {
	return &Permission{
		Category:    category,
		Level:       0,
		Description: "Nothing",
	}
}
