package entities

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleVendor   Role = "VENDOR"
	RoleDelivery Role = "DELIVERY"
	RoleAdmin    Role = "ADMIN"
)

var allRoles = [...]Role{RoleCustomer, RoleVendor, RoleDelivery, RoleAdmin}

func (r Role) Valid() bool {
	for _, v := range allRoles {
		if r == v {
			return true
		}
	}
	return false
}
