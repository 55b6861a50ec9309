package domain

// Role is the capability set a member acts with.
type Role string

const (
	RoleMember  Role = "member"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Permission names a single guarded capability.
type Permission string

const (
	PermMemberCreate     Permission = "member:create"
	PermMemberAssignRole Permission = "member:assign-role"
	PermMemberUpdate     Permission = "member:update"
	PermMemberStatus     Permission = "member:status"
	PermLoanCreate       Permission = "loan:create"
	PermLoanApply        Permission = "loan:apply"
	PermLoanDecide       Permission = "loan:decide"
	PermLoanDisburse     Permission = "loan:disburse"
	PermLoanStatus       Permission = "loan:status"
	PermTransactionWrite Permission = "transaction:create"
	PermRepaymentCreate  Permission = "repayment:create"
	PermUnfreezeRequest  Permission = "unfreeze:request"
	PermUnfreezeProcess  Permission = "unfreeze:process"
	PermLedgerReadAll    Permission = "ledger:read-all"
	PermDashboardRead    Permission = "dashboard:read"
)

var staffPermissions = []Permission{
	PermMemberCreate,
	PermMemberUpdate,
	PermMemberStatus,
	PermLoanCreate,
	PermLoanApply,
	PermLoanDecide,
	PermLoanDisburse,
	PermLoanStatus,
	PermTransactionWrite,
	PermRepaymentCreate,
	PermUnfreezeRequest,
	PermLedgerReadAll,
	PermDashboardRead,
}

var rolePermissions = map[Role]map[Permission]bool{
	RoleAdmin:   permissionSet(append([]Permission{PermMemberAssignRole, PermUnfreezeProcess}, staffPermissions...)...),
	RoleManager: permissionSet(staffPermissions...),
	RoleMember:  permissionSet(PermLoanApply, PermUnfreezeRequest),
}

func permissionSet(perms ...Permission) map[Permission]bool {
	set := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	MemberID string `json:"member_id"`
	Role     Role   `json:"role"`
}

// SystemActor is used by batch jobs that run without a human caller.
func SystemActor() Actor {
	return Actor{MemberID: "system", Role: RoleAdmin}
}

// Can reports whether the actor's role grants p.
func (a Actor) Can(p Permission) bool {
	return rolePermissions[a.Role][p]
}

// Owns reports whether the actor is the member identified by memberID.
func (a Actor) Owns(memberID string) bool {
	return a.MemberID != "" && a.MemberID == memberID
}
