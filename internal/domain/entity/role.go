package entity

// Role IDs carried in access tokens issued by the account service
const (
	RoleIDAdmin   = 1
	RoleIDDoctor  = 2
	RoleIDPatient = 3
)
