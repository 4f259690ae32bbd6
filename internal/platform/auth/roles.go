package auth

// Role is one of the fixed staff roles governing permitted operations.
type Role string

const (
	RoleSuperAdmin    Role = "SUPER_ADMIN"
	RoleHospitalAdmin Role = "HOSPITAL_ADMIN"
	RoleDoctor        Role = "DOCTOR"
	RoleNurse         Role = "NURSE"
	RolePharmacist    Role = "PHARMACIST"
	RoleReceptionist  Role = "RECEPTIONIST"
)

var validRoles = map[Role]bool{
	RoleSuperAdmin:    true,
	RoleHospitalAdmin: true,
	RoleDoctor:        true,
	RoleNurse:         true,
	RolePharmacist:    true,
	RoleReceptionist:  true,
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool { return validRoles[r] }
