package domain

// Permission is an atomic capability checked against a role's grant set.
type Permission string

const (
	// Documents
	PermCreateDocument Permission = "create_document"
	PermReadDocument   Permission = "read_document"
	PermUpdateDocument Permission = "update_document"
	PermDeleteDocument Permission = "delete_document"

	// Contracts
	PermCreateContract Permission = "create_contract"
	PermReadContract   Permission = "read_contract"
	PermUpdateContract Permission = "update_contract"
	PermDeleteContract Permission = "delete_contract"
	PermSignContract   Permission = "sign_contract"

	// Transactions
	PermCreateTransaction Permission = "create_transaction"
	PermReadTransaction   Permission = "read_transaction"
	PermUpdateTransaction Permission = "update_transaction"

	// User management
	PermManageUsers Permission = "manage_users"
	PermViewUsers   Permission = "view_users"

	// Profile
	PermUpdateProfile Permission = "update_profile"
	PermViewProfile   Permission = "view_profile"
)

// allPermissions enumerates every capability. Admin holds all of them.
var allPermissions = []Permission{
	PermCreateDocument, PermReadDocument, PermUpdateDocument, PermDeleteDocument,
	PermCreateContract, PermReadContract, PermUpdateContract, PermDeleteContract, PermSignContract,
	PermCreateTransaction, PermReadTransaction, PermUpdateTransaction,
	PermManageUsers, PermViewUsers,
	PermUpdateProfile, PermViewProfile,
}

// rolePermissions is the authorization ground truth: a static role → grant-set
// table, immutable after init and safe for unsynchronized concurrent reads.
// There is no per-resource ACL; all checks are role-level. Admin is handled
// in HasPermission and holds every permission implicitly.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleImporter: permSet(
		PermCreateDocument, PermReadDocument, PermUpdateDocument, PermDeleteDocument,
		PermCreateContract, PermReadContract, PermUpdateContract, PermSignContract,
		PermCreateTransaction, PermReadTransaction, PermUpdateTransaction,
		PermUpdateProfile, PermViewProfile,
	),
	RoleExporter: permSet(
		PermCreateDocument, PermReadDocument, PermUpdateDocument, PermDeleteDocument,
		PermReadContract, PermSignContract,
		PermReadTransaction, PermUpdateTransaction,
		PermUpdateProfile, PermViewProfile,
	),
	RoleLogistics: permSet(
		PermReadDocument, PermCreateDocument,
		PermReadContract,
		PermReadTransaction, PermUpdateTransaction,
		PermUpdateProfile, PermViewProfile,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether role is granted perm.
func HasPermission(role Role, perm Permission) bool {
	if role == RoleAdmin {
		return true
	}
	_, ok := rolePermissions[role][perm]
	return ok
}

// PermissionsFor returns a copy of the grant set for role.
func PermissionsFor(role Role) []Permission {
	if role == RoleAdmin {
		all := make([]Permission, len(allPermissions))
		copy(all, allPermissions)
		return all
	}
	set := rolePermissions[role]
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	return perms
}
