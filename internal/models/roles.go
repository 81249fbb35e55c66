package models

// Role is the job function of a dashboard user.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleDesigner          Role = "designer"
	RoleProductionManager Role = "production_manager"
	RoleProcurement       Role = "procurement"
	RoleSales             Role = "sales"
	RoleFinance           Role = "finance"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleDesigner, RoleProductionManager, RoleProcurement, RoleSales, RoleFinance}
}

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDesigner, RoleProductionManager, RoleProcurement, RoleSales, RoleFinance:
		return true
	}
	return false
}

// Module is a dashboard area guarded by permissions.
type Module string

const (
	ModuleDashboard Module = "dashboard"
	ModuleCosting   Module = "costing"
	ModuleMaterials Module = "materials"
	ModuleWorkflow  Module = "workflow"
	ModuleDesigns   Module = "designs"
	ModuleReports   Module = "reports"
	ModuleInventory Module = "inventory"
	ModuleSettings  Module = "settings"
)

// Action is what a permission allows within a module.
type Action string

const (
	ActionView    Action = "view"
	ActionEdit    Action = "edit"
	ActionApprove Action = "approve"
)

// Permission pairs a module with an action, e.g. edit_workflow.
type Permission struct {
	Module Module
	Action Action
}

func (p Permission) String() string {
	return string(p.Action) + "_" + string(p.Module)
}

// User is the actor behind a request.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}
