package service

import (
	"context"
	"strings"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"
)

type ClienteService interface {
	Crear(ctx context.Context, empresaID uint, req dto.ClienteRequest) (*dto.ClienteResponse, error)
	Obtener(ctx context.Context, empresaID, id uint) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, empresaID uint, q string) ([]dto.ClienteResponse, error)
	Actualizar(ctx context.Context, empresaID, id uint, req dto.ClienteRequest) (*dto.ClienteResponse, error)
	// Eliminar keeps past pedidos; their cliente_id becomes NULL.
	Eliminar(ctx context.Context, empresaID, id uint) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, empresaID uint, req dto.ClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		EmpresaID: empresaID,
		Nombre:    strings.TrimSpace(req.Nombre),
		Telefono:  strings.TrimSpace(req.Telefono),
		Direccion: req.Direccion,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Obtener(ctx context.Context, empresaID, id uint) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, empresaID, id)
	if err != nil {
		return nil, notFound(err, "cliente", id)
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context, empresaID uint, q string) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, empresaID, strings.TrimSpace(q))
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		out = append(out, *clienteToResponse(&clientes[i]))
	}
	return out, nil
}

func (s *clienteService) Actualizar(ctx context.Context, empresaID, id uint, req dto.ClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, empresaID, id)
	if err != nil {
		return nil, notFound(err, "cliente", id)
	}
	c.Nombre = strings.TrimSpace(req.Nombre)
	c.Telefono = strings.TrimSpace(req.Telefono)
	c.Direccion = req.Direccion
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Eliminar(ctx context.Context, empresaID, id uint) error {
	return notFound(s.repo.Delete(ctx, empresaID, id), "cliente", id)
}
