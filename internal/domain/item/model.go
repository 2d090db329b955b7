package item

import "fmt"

// Role is the roster role an item fills once acquired.
type Role string

const (
	RoleGoalkeeper Role = "goalkeeper"
	RoleDefender   Role = "defender"
	RoleMidfielder Role = "midfielder"
	RoleForward    Role = "forward"
)

var AllRoles = map[Role]struct{}{
	RoleGoalkeeper: {},
	RoleDefender:   {},
	RoleMidfielder: {},
	RoleForward:    {},
}

// Item is a draftable player. Immutable while an auction on it is open.
type Item struct {
	ID        string
	Name      string
	Role      Role
	Quotation int64
}

func (i Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item id is required")
	}
	if i.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if _, ok := AllRoles[i.Role]; !ok {
		return fmt.Errorf("unknown item role: %s", i.Role)
	}
	if i.Quotation <= 0 {
		return fmt.Errorf("item quotation must be greater than zero")
	}

	return nil
}
