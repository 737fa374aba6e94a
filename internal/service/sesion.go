package service

import "fmt"

// Sesion identifies who is operating: the tenant, the user and the login
// session. Every operation is scoped by EmpresaID taken from here, never
// from request input.
type Sesion struct {
	EmpresaID uint
	UsuarioID uint
	Username  string
	SID       string
}

func (s Sesion) carritoKey() string {
	return fmt.Sprintf("carrito:%d:%d:%s", s.EmpresaID, s.UsuarioID, s.SID)
}
