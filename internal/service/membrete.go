package service

import (
	"context"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/repository"
	"github.com/KilOS-pos/pos-carniceria/internal/ticket"
)

// Membrete builds the receipt header of an Empresa.
type Membrete struct {
	empresas repository.UsuarioRepository
	eslogan  string
	loc      *time.Location
}

func NewMembrete(empresas repository.UsuarioRepository, eslogan string, loc *time.Location) *Membrete {
	if loc == nil {
		loc = time.UTC
	}
	return &Membrete{empresas: empresas, eslogan: eslogan, loc: loc}
}

func (m *Membrete) Para(ctx context.Context, empresaID uint) (ticket.Encabezado, error) {
	e, err := m.empresas.FindEmpresa(ctx, empresaID)
	if err != nil {
		return ticket.Encabezado{}, err
	}
	return ticket.Encabezado{Empresa: e.Nombre, Eslogan: m.eslogan, Loc: m.loc}, nil
}

func (m *Membrete) Loc() *time.Location { return m.loc }
