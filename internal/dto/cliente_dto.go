package dto

type ClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=100"`
	Telefono  string  `json:"telefono"  validate:"required,max=20"`
	Direccion *string `json:"direccion" validate:"omitempty,max=500"`
}

type ClienteResponse struct {
	ID        uint    `json:"id"`
	Nombre    string  `json:"nombre"`
	Telefono  string  `json:"telefono"`
	Direccion *string `json:"direccion"`
}
