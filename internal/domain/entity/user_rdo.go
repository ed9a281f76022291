package entity

// UserRDO is the response data object for a user: the only shape handed to
// external callers. Exactly five fields are exposed; the password hash, the
// raw user type and the timestamps are never copied.
type UserRDO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	AvatarPath string `json:"avatarPath"`
	IsPro      bool   `json:"isPro"`
}

// NewUserRDO projects a user record into its external representation.
// IsPro is derived from the account tier. Pure mapping, no error conditions.
func NewUserRDO(u *User) UserRDO {
	return UserRDO{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		AvatarPath: u.AvatarPath,
		IsPro:      u.IsPro(),
	}
}
