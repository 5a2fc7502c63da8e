package service

// Role identifies the kind of caller performing an operation.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleDriver   Role = "DRIVER"
	RoleOwner    Role = "OWNER"
	RoleOperator Role = "OPERATOR"
)

// Actor is the authenticated identity performing a core operation. It is
// passed explicitly into every mutating service call rather than carried in
// ambient request state.
type Actor struct {
	ID   string
	Role Role
}

// Operator reports whether the actor holds operator privileges.
func (a Actor) Operator() bool {
	return a.Role == RoleOperator
}
