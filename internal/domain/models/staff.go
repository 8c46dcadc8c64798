package models

// Staff is a desk operator who can log in and own tickets.
type Staff struct {
	Username     string `yaml:"username" json:"username"`
	Name         string `yaml:"name" json:"name"`
	Role         string `yaml:"role" json:"role"`
	PasswordHash string `yaml:"password_hash" json:"-"` // never sent to the frontend
	Password     string `yaml:"password" json:"-"`      // plain text in roster files, hashed on load
}

type PublicStaff struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (s Staff) ToPublic() PublicStaff {
	return PublicStaff{
		Username: s.Username,
		Name:     s.Name,
		Role:     s.Role,
	}
}

// LoginInput is the login payload.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
