package rbac

const (
	PermMarkLocal  = "marking:local"
	PermMarkRemote = "marking:remote"
	PermPlan       = "marking:plan"
	PermJob        = "marking:job"
	PermJobView    = "jobs:view"
)

const (
	RoleAdmin    = "admin"
	RoleTeacher  = "teacher"
	RoleReviewer = "reviewer"
)

// RolePermissions is the default policy. Remote marking is admin-only
// until granted with Checker.Grant.
var RolePermissions = map[string][]string{
	RoleReviewer: {
		PermPlan,
		PermJobView,
	},
	RoleTeacher: {
		PermMarkLocal,
		PermPlan,
		PermJob,
		PermJobView,
	},
	RoleAdmin: {
		"*", // everything
	},
}
