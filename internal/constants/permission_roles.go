package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
// Approval permissions are deliberately admin-only: the pending→approved
// transition is checked here server-side, never by hiding UI controls.
var PermissionRoles = map[string][]string{
	ViewData:           {Viewer, Clerk, Admin, Superadmin},
	CreateAssignment:   {Clerk, Admin, Superadmin},
	EditAssignment:     {Clerk, Admin, Superadmin},
	IssueRounds:        {Clerk, Admin, Superadmin},
	ConsumeRounds:      {Clerk, Admin, Superadmin},
	TransferAssignment: {Admin, Superadmin},
	ReturnRounds:       {Clerk, Admin, Superadmin},
	ApproveAssignment:  {Admin, Superadmin},
	CreateDeduction:    {Clerk, Admin, Superadmin},
	EditDeduction:      {Clerk, Admin, Superadmin},
	ApproveDeduction:   {Admin, Superadmin},
	ManageStations:     {Admin, Superadmin},
	ManageEmployees:    {Clerk, Admin, Superadmin},
	ManageAssets:       {Admin, Superadmin},
	AssignRole:         {Superadmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
