package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistroRequest creates a new Empresa together with its first administrator.
type RegistroRequest struct {
	EmpresaNombre   string  `json:"empresa_nombre"   validate:"required,min=2,max=100"`
	Username        string  `json:"username"         validate:"required,min=1,max=150"`
	Nombre          string  `json:"nombre"           validate:"required,min=2,max=100"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	Password        string  `json:"password"         validate:"required,min=8"`
	PasswordConfirm string  `json:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CrearUsuarioRequest struct {
	Username string  `json:"username" validate:"required,min=1,max=150"`
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=100"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Rol      string  `json:"rol"      validate:"required,oneof=cajero administrador"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID        uint    `json:"id"`
	EmpresaID uint    `json:"empresa_id"`
	Empresa   string  `json:"empresa,omitempty"`
	Username  string  `json:"username"`
	Nombre    string  `json:"nombre"`
	Email     *string `json:"email"`
	Rol       string  `json:"rol"`
	Activo    bool    `json:"activo"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}
