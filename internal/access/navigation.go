package access

import "melhado-backend/internal/models"

// View is a dashboard screen.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewInspection    View = "inspection"
	ViewHistory       View = "history"
	ViewNotifications View = "notifications"
	ViewProperties    View = "properties"
	ViewReports       View = "reports"
	ViewSettings      View = "settings"
	ViewUsers         View = "users"
)

// Screen identifies what a role sees for a view.
type Screen string

const (
	ScreenClientDashboard   Screen = "client-dashboard"
	ScreenInspectionForm    Screen = "inspection-form"
	ScreenInspectionHistory Screen = "inspection-history"
	ScreenNotifications     Screen = "notifications"
	ScreenPortfolio         Screen = "landlord-portfolio"
	ScreenPropertyManager   Screen = "property-manager"
	ScreenLandlordReports   Screen = "landlord-reports"
	ScreenSettings          Screen = "settings"
	ScreenAdminDashboard    Screen = "admin-dashboard"
	ScreenUserManagement    Screen = "user-management"
	ScreenAdminProperties   Screen = "admin-properties"
	ScreenAdminReports      Screen = "admin-reports"
)

type MenuItem struct {
	View  View   `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

type roleNav struct {
	menu    []MenuItem
	screens map[View]Screen
}

// navigation is the Role x View table. Views absent from a role's screens
// resolve to that role's dashboard.
var navigation = map[models.Role]roleNav{
	models.RoleClient: {
		menu: []MenuItem{
			{ViewDashboard, "Dashboard", "home"},
			{ViewInspection, "New Inspection", "file-text"},
			{ViewHistory, "History", "calendar"},
		},
		screens: map[View]Screen{
			ViewDashboard:     ScreenClientDashboard,
			ViewInspection:    ScreenInspectionForm,
			ViewHistory:       ScreenInspectionHistory,
			ViewNotifications: ScreenNotifications,
		},
	},
	models.RoleLandlord: {
		menu: []MenuItem{
			{ViewDashboard, "Portfolio", "building"},
			{ViewProperties, "Properties", "home"},
			{ViewReports, "Reports", "bar-chart"},
			{ViewSettings, "Settings", "settings"},
		},
		screens: map[View]Screen{
			ViewDashboard:     ScreenPortfolio,
			ViewProperties:    ScreenPropertyManager,
			ViewReports:       ScreenLandlordReports,
			ViewSettings:      ScreenSettings,
			ViewNotifications: ScreenNotifications,
		},
	},
	models.RoleAdmin: {
		menu: []MenuItem{
			{ViewDashboard, "Dashboard", "bar-chart"},
			{ViewUsers, "Users", "users"},
			{ViewProperties, "Properties", "building"},
			{ViewReports, "Reports", "file-text"},
			{ViewSettings, "Settings", "settings"},
		},
		screens: map[View]Screen{
			ViewDashboard:     ScreenAdminDashboard,
			ViewUsers:         ScreenUserManagement,
			ViewProperties:    ScreenAdminProperties,
			ViewReports:       ScreenAdminReports,
			ViewSettings:      ScreenSettings,
			ViewNotifications: ScreenNotifications,
		},
	},
}

// Resolve maps a requested view to the role's screen and the view actually
// shown. Unknown views fall back to the dashboard.
func Resolve(role models.Role, view View) (View, Screen, bool) {
	nav, ok := navigation[role]
	if !ok {
		return "", "", false
	}
	if s, ok := nav.screens[view]; ok {
		return view, s, true
	}
	return ViewDashboard, nav.screens[ViewDashboard], true
}

// Menu returns the ordered sidebar entries for role.
func Menu(role models.Role) []MenuItem {
	return append([]MenuItem(nil), navigation[role].menu...)
}
