package constants

const (
	ViewData           = "view_data"
	CreateAssignment   = "create_assignment"
	EditAssignment     = "edit_assignment"
	IssueRounds        = "issue_rounds"
	ConsumeRounds      = "consume_rounds"
	TransferAssignment = "transfer_assignment"
	ReturnRounds       = "return_rounds"
	ApproveAssignment  = "approve_assignment"
	CreateDeduction    = "create_deduction"
	EditDeduction      = "edit_deduction"
	ApproveDeduction   = "approve_deduction"
	ManageStations     = "manage_stations"
	ManageEmployees    = "manage_employees"
	ManageAssets       = "manage_assets"
	AssignRole         = "assign_role"
)
