// Package access resolves what a dashboard role may do.
//
// A Policy is assembled once at startup and shared read-only; nothing in the
// package mutates a table after construction.
package access

import "decorops/internal/models"

// Policy maps roles to the permissions they hold.
type Policy struct {
	grants map[models.Role]map[models.Permission]struct{}
}

// NewPolicy copies the supplied table into an immutable policy.
func NewPolicy(table map[models.Role][]models.Permission) *Policy {
	grants := make(map[models.Role]map[models.Permission]struct{}, len(table))
	for role, perms := range table {
		set := make(map[models.Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		grants[role] = set
	}
	return &Policy{grants: grants}
}

func view(m models.Module) models.Permission    { return models.Permission{Module: m, Action: models.ActionView} }
func edit(m models.Module) models.Permission    { return models.Permission{Module: m, Action: models.ActionEdit} }
func approve(m models.Module) models.Permission { return models.Permission{Module: m, Action: models.ActionApprove} }

// DefaultPolicy is the role table used by the décor studio.
func DefaultPolicy() *Policy {
	return NewPolicy(map[models.Role][]models.Permission{
		models.RoleAdmin: {
			view(models.ModuleDashboard),
			view(models.ModuleCosting), edit(models.ModuleCosting), approve(models.ModuleCosting),
			view(models.ModuleMaterials), edit(models.ModuleMaterials),
			view(models.ModuleWorkflow), edit(models.ModuleWorkflow),
			view(models.ModuleDesigns), edit(models.ModuleDesigns),
			view(models.ModuleReports),
			view(models.ModuleInventory), edit(models.ModuleInventory),
			view(models.ModuleSettings), edit(models.ModuleSettings),
		},
		models.RoleDesigner: {
			view(models.ModuleDashboard),
			view(models.ModuleCosting), edit(models.ModuleCosting),
			view(models.ModuleMaterials),
			view(models.ModuleWorkflow),
			view(models.ModuleDesigns), edit(models.ModuleDesigns),
			view(models.ModuleInventory),
		},
		models.RoleProductionManager: {
			view(models.ModuleDashboard),
			view(models.ModuleCosting),
			view(models.ModuleMaterials), edit(models.ModuleMaterials),
			view(models.ModuleWorkflow), edit(models.ModuleWorkflow),
			view(models.ModuleInventory), edit(models.ModuleInventory),
			view(models.ModuleReports),
		},
		models.RoleProcurement: {
			view(models.ModuleDashboard),
			view(models.ModuleCosting),
			view(models.ModuleMaterials), edit(models.ModuleMaterials),
			view(models.ModuleWorkflow),
			view(models.ModuleInventory), edit(models.ModuleInventory),
		},
		models.RoleSales: {
			view(models.ModuleDashboard),
			view(models.ModuleCosting),
			view(models.ModuleDesigns),
			view(models.ModuleReports),
		},
		models.RoleFinance: {
			view(models.ModuleDashboard),
			view(models.ModuleCosting), approve(models.ModuleCosting),
			view(models.ModuleReports),
			view(models.ModuleInventory),
		},
	})
}

// For returns the grants held by a role. Unknown roles hold nothing.
func (p *Policy) For(role models.Role) Grants {
	if p == nil {
		return Grants{role: role}
	}
	return Grants{role: role, perms: p.grants[role]}
}

// Grants is the resolved permission set of one actor.
type Grants struct {
	role  models.Role
	perms map[models.Permission]struct{}
}

// Role is the role the grants were resolved for.
func (g Grants) Role() models.Role {
	return g.role
}

// Has reports whether the permission is held.
func (g Grants) Has(p models.Permission) bool {
	_, ok := g.perms[p]
	return ok
}

func (g Grants) CanView(m models.Module) bool    { return g.Has(view(m)) }
func (g Grants) CanEdit(m models.Module) bool    { return g.Has(edit(m)) }
func (g Grants) CanApprove(m models.Module) bool { return g.Has(approve(m)) }

// CanMoveEvents reports whether the actor may drag events between stages.
func (g Grants) CanMoveEvents() bool {
	return g.CanEdit(models.ModuleWorkflow)
}
