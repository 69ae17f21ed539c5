// Package access holds the role permission table and the role-aware
// navigation used by every dashboard.
package access

import (
	"slices"

	"melhado-backend/internal/models"
)

type Resource string

const (
	ResourceProperties  Resource = "properties"
	ResourceInspections Resource = "inspections"
	ResourceDocuments   Resource = "documents"
	ResourceUsers       Resource = "users"
	ResourceReports     Resource = "reports"
)

type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionDownload Action = "download"
)

// Scope narrows which rows a permission covers.
type Scope string

const (
	ScopeOwn      Scope = "own"      // landlord's own properties
	ScopeAssigned Scope = "assigned" // properties assigned to the inspector
	ScopeAll      Scope = "all"
)

type Permission struct {
	Resource Resource `json:"resource"`
	Actions  []Action `json:"actions"`
	Scope    Scope    `json:"scope,omitempty"`
}

var crud = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

// DefaultPermissions is the permission set granted to each role.
var DefaultPermissions = map[models.Role][]Permission{
	models.RoleClient: {
		{Resource: ResourceInspections, Actions: []Action{ActionCreate, ActionRead, ActionUpdate}, Scope: ScopeAssigned},
		{Resource: ResourceProperties, Actions: []Action{ActionRead}, Scope: ScopeAssigned},
		{Resource: ResourceDocuments, Actions: []Action{ActionRead}, Scope: ScopeAssigned},
	},
	models.RoleLandlord: {
		{Resource: ResourceProperties, Actions: []Action{ActionCreate, ActionRead, ActionUpdate}, Scope: ScopeOwn},
		{Resource: ResourceInspections, Actions: []Action{ActionRead}, Scope: ScopeOwn},
		{Resource: ResourceDocuments, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionDownload}, Scope: ScopeOwn},
		{Resource: ResourceReports, Actions: []Action{ActionRead}, Scope: ScopeOwn},
	},
	models.RoleAdmin: {
		{Resource: ResourceProperties, Actions: crud, Scope: ScopeAll},
		{Resource: ResourceInspections, Actions: crud, Scope: ScopeAll},
		{Resource: ResourceDocuments, Actions: append(slices.Clone(crud), ActionDownload), Scope: ScopeAll},
		{Resource: ResourceUsers, Actions: crud, Scope: ScopeAll},
		{Resource: ResourceReports, Actions: crud, Scope: ScopeAll},
	},
}

// PermissionsFor returns the role's permission list.
func PermissionsFor(role models.Role) []Permission {
	return DefaultPermissions[role]
}

// HasPermission reports whether role may perform action on resource. When
// scope is non-empty the permission must cover it; an "all" permission covers
// every scope.
func HasPermission(role models.Role, resource Resource, action Action, scope Scope) bool {
	for _, p := range DefaultPermissions[role] {
		if p.Resource != resource {
			continue
		}
		if !slices.Contains(p.Actions, action) {
			return false
		}
		if scope != "" && p.Scope != ScopeAll && p.Scope != scope {
			return false
		}
		return true
	}
	return false
}

// ScopeOf returns the scope of the role's permission on resource, or "" when
// the role has none.
func ScopeOf(role models.Role, resource Resource) Scope {
	for _, p := range DefaultPermissions[role] {
		if p.Resource == resource {
			return p.Scope
		}
	}
	return ""
}

// CanAccessDocument reports whether role is in the document's access list.
func CanAccessDocument(role models.Role, accessRoles []models.Role) bool {
	return slices.Contains(accessRoles, role)
}

// CanSeeProperty applies the role's property scope to a single property.
func CanSeeProperty(userID string, role models.Role, p *models.Property) bool {
	switch ScopeOf(role, ResourceProperties) {
	case ScopeAll:
		return true
	case ScopeOwn:
		return p.LandlordID == userID
	case ScopeAssigned:
		return p.AssignedInspector != nil && *p.AssignedInspector == userID
	}
	return false
}

var permissionLabels = map[Resource]map[Action]string{
	ResourceProperties: {
		ActionCreate: "Add Properties", ActionRead: "View Properties",
		ActionUpdate: "Edit Properties", ActionDelete: "Delete Properties",
	},
	ResourceInspections: {
		ActionCreate: "Create Inspections", ActionRead: "View Inspections",
		ActionUpdate: "Edit Inspections", ActionDelete: "Delete Inspections",
	},
	ResourceDocuments: {
		ActionCreate: "Upload Documents", ActionRead: "View Documents",
		ActionUpdate: "Edit Documents", ActionDelete: "Delete Documents",
		ActionDownload: "Download Documents",
	},
	ResourceUsers: {
		ActionCreate: "Add Users", ActionRead: "View Users",
		ActionUpdate: "Edit Users", ActionDelete: "Delete Users",
	},
	ResourceReports: {
		ActionCreate: "Create Reports", ActionRead: "View Reports",
		ActionUpdate: "Edit Reports", ActionDelete: "Delete Reports",
	},
}

// PermissionLabel returns the settings-page label for a permission.
func PermissionLabel(resource Resource, action Action) string {
	if l, ok := permissionLabels[resource][action]; ok {
		return l
	}
	return string(action) + " " + string(resource)
}
