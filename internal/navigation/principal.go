package navigation

import "techrobotics-site/internal/models"

// Principal is who the session acts as. The set of implementations is closed:
// Guest, Member and Admin.
type Principal interface {
	Role() models.Role
	principal()
}

type Guest struct{}

type Member struct {
	User models.User
}

type Admin struct {
	User models.User
}

func (Guest) Role() models.Role  { return models.RoleGuest }
func (Member) Role() models.Role { return models.RoleUser }
func (Admin) Role() models.Role  { return models.RoleAdmin }

func (Guest) principal()  {}
func (Member) principal() {}
func (Admin) principal()  {}

// UserOf returns the authenticated user behind a principal.
func UserOf(p Principal) (*models.User, bool) {
	switch v := p.(type) {
	case Member:
		u := v.User
		u.Role = models.RoleUser
		return &u, true
	case Admin:
		u := v.User
		u.Role = models.RoleAdmin
		return &u, true
	}
	return nil, false
}

// PrincipalFor builds the variant matching the user's role.
func PrincipalFor(user *models.User) Principal {
	if user == nil {
		return Guest{}
	}
	switch user.Role {
	case models.RoleAdmin:
		return Admin{User: *user}
	case models.RoleUser:
		return Member{User: *user}
	}
	return Guest{}
}
