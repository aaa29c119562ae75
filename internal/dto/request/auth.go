package request

type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	// Role kosong berarti traveler. Admin tidak bisa dipilih sendiri.
	Role string `json:"role,omitempty" validate:"omitempty,oneof=traveler owner provider partner"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=traveler owner provider partner admin super_admin"`
}
