package constants

import "fmt"

const (
	RoleAdmin = "admin"
)

const ErrOnlyAdminsCanAccess = "Only admins may access %s."

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

var (
	AdminRoles = []string{RoleAdmin}
)
