package routes

// Sidebar is the dashboard's navigation list across all roles. Items filters
// it down to one role.
func Sidebar() []NavItem {
	return []NavItem{
		{Label: "Overview", Path: AdminRoot},
		{Label: "Users", Path: AdminRoot + "/users"},
		{Label: "Organisations", Path: AdminRoot + "/organisations"},
		{Label: "Countries", Path: AdminRoot + "/countries"},
		{Label: "Mobile services", Path: AdminRoot + "/mobile-services"},

		{Label: "Overview", Path: MerchantRoot},
		{Label: "Grouped payments", Path: MerchantRoot + "/grouped-payments"},
		{Label: "Beneficiaries", Path: MerchantRoot + "/beneficiaries"},
		{Label: "Settings", Path: MerchantRoot + "/settings"},
		{Label: "Webhooks", Path: MerchantRoot + "/settings/webhooks"},

		{Label: "Overview", Path: ClientRoot},
		{Label: "Transfers", Path: ClientRoot + "/transfers"},
		{Label: "Beneficiaries", Path: ClientRoot + "/beneficiaries"},
	}
}
