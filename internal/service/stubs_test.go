package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories. They pass a nil *gorm.DB from DB(), so runTx calls
// the closure directly; each stub serializes its own state with a mutex.

var reloj = time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ── productos ────────────────────────────────────────────────────────────────

type memProductos struct {
	mu    sync.Mutex
	rows  map[uint]*model.Producto
	next  uint
	delFK bool // Delete fails as if the product had sales
	// antesDeUpdate runs between the service's read and its write.
	antesDeUpdate func()
	// antesDeBloquear runs between checkout's preflight and its row locks.
	antesDeBloquear func()
}

func newMemProductos(ps ...model.Producto) *memProductos {
	m := &memProductos{rows: map[uint]*model.Producto{}}
	for i := range ps {
		p := ps[i]
		if p.EmpresaID == 0 {
			p.EmpresaID = 1
		}
		if p.UnidadMedida == "" {
			p.UnidadMedida = model.UnidadKg
		}
		m.rows[p.ID] = &p
		if p.ID > m.next {
			m.next = p.ID
		}
	}
	return m
}

var _ repository.ProductoRepository = (*memProductos)(nil)

func (m *memProductos) get(id uint) model.Producto {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

func (m *memProductos) Create(_ context.Context, p *model.Producto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	p.ID = m.next
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memProductos) FindByID(_ context.Context, empresaID, id uint) (*model.Producto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.EmpresaID != empresaID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductos) FindByIDs(_ context.Context, empresaID uint, ids []uint) ([]model.Producto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Producto
	for _, id := range ids {
		if p, ok := m.rows[id]; ok && p.EmpresaID == empresaID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProductos) List(_ context.Context, empresaID uint, f dto.ProductoFilter) ([]model.Producto, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Producto
	for _, p := range m.rows {
		if p.EmpresaID != empresaID || p.Activo == f.Archivados {
			continue
		}
		if f.Nombre != "" && !strings.Contains(strings.ToLower(p.Nombre), strings.ToLower(f.Nombre)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, int64(len(out)), nil
}

// Update applies only the given columns, as the gorm map update does.
func (m *memProductos) Update(_ context.Context, empresaID, id uint, campos map[string]any) error {
	if m.antesDeUpdate != nil {
		m.antesDeUpdate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.EmpresaID != empresaID {
		return gorm.ErrRecordNotFound
	}
	decimalONil := func(v any) *decimal.Decimal {
		if d, ok := v.(decimal.Decimal); ok {
			return &d
		}
		return nil
	}
	for col, v := range campos {
		switch col {
		case "nombre":
			p.Nombre = v.(string)
		case "precio":
			p.Precio = v.(decimal.Decimal)
		case "costo":
			p.Costo = v.(decimal.Decimal)
		case "stock":
			p.Stock = decimalONil(v)
		case "precio_mayoreo":
			p.PrecioMayoreo = decimalONil(v)
		case "mayoreo_desde_kg":
			p.MayoreoDesdeKg = decimalONil(v)
		case "unidad_medida":
			p.UnidadMedida = v.(string)
		case "requiere_stock":
			p.RequiereStock = v.(bool)
		default:
			return fmt.Errorf("columna inesperada %q", col)
		}
	}
	return nil
}

func (m *memProductos) SetActivo(_ context.Context, empresaID, id uint, activo bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.EmpresaID != empresaID {
		return gorm.ErrRecordNotFound
	}
	p.Activo = activo
	return nil
}

func (m *memProductos) Delete(_ context.Context, empresaID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.EmpresaID != empresaID {
		return gorm.ErrRecordNotFound
	}
	if m.delFK {
		return &pgconn.PgError{Code: "23503"}
	}
	delete(m.rows, id)
	return nil
}

func (m *memProductos) LockByIDsTx(ctx context.Context, _ *gorm.DB, empresaID uint, ids []uint) ([]model.Producto, error) {
	if m.antesDeBloquear != nil {
		m.antesDeBloquear()
	}
	return m.FindByIDs(ctx, empresaID, ids)
}

// DescontarStockTx is the conditional decrement: it only applies when the
// row still holds enough stock.
func (m *memProductos) DescontarStockTx(_ context.Context, _ *gorm.DB, empresaID, id uint, cantidad decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.EmpresaID != empresaID || p.Stock == nil || p.Stock.LessThan(cantidad) {
		return false, nil
	}
	nuevo := p.Stock.Sub(cantidad)
	p.Stock = &nuevo
	return true, nil
}

func (m *memProductos) DB() *gorm.DB { return nil }

// ── clientes ─────────────────────────────────────────────────────────────────

type memClientes struct {
	mu   sync.Mutex
	rows map[uint]*model.Cliente
	next uint
}

func newMemClientes(cs ...model.Cliente) *memClientes {
	m := &memClientes{rows: map[uint]*model.Cliente{}}
	for i := range cs {
		c := cs[i]
		if c.EmpresaID == 0 {
			c.EmpresaID = 1
		}
		m.rows[c.ID] = &c
		if c.ID > m.next {
			m.next = c.ID
		}
	}
	return m
}

var _ repository.ClienteRepository = (*memClientes)(nil)

func (m *memClientes) Create(_ context.Context, c *model.Cliente) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	c.ID = m.next
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memClientes) FindByID(_ context.Context, empresaID, id uint) (*model.Cliente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.EmpresaID != empresaID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memClientes) List(_ context.Context, empresaID uint, q string) ([]model.Cliente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Cliente
	for _, c := range m.rows {
		if c.EmpresaID != empresaID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Nombre), strings.ToLower(q)) && !strings.Contains(c.Telefono, q) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (m *memClientes) Update(_ context.Context, c *model.Cliente) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memClientes) Delete(_ context.Context, empresaID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.EmpresaID != empresaID {
		return gorm.ErrRecordNotFound
	}
	delete(m.rows, id)
	return nil
}

// ── carritos ─────────────────────────────────────────────────────────────────

type memCarritos struct {
	mu   sync.Mutex
	rows map[string]model.Carrito
}

func newMemCarritos() *memCarritos { return &memCarritos{rows: map[string]model.Carrito{}} }

var _ repository.CarritoRepository = (*memCarritos)(nil)

func (m *memCarritos) Get(_ context.Context, key string) (*model.Carrito, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[key]
	if !ok {
		return model.NuevoCarrito(), nil
	}
	cp := c
	cp.Items = make(map[string]decimal.Decimal, len(c.Items))
	for k, v := range c.Items {
		cp.Items[k] = v
	}
	return &cp, nil
}

func (m *memCarritos) Save(_ context.Context, key string, c *model.Carrito) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[key] = *c
	return nil
}

func (m *memCarritos) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, key)
	return nil
}

// put stores a cart with the given producto id → quantity lines.
func (m *memCarritos) put(ses Sesion, lineas map[uint]string) {
	c := model.NuevoCarrito()
	for id, q := range lineas {
		c.Items[itemKey(id)] = dec(q)
	}
	_ = m.Save(context.Background(), ses.carritoKey(), c)
}

// ── pedidos ──────────────────────────────────────────────────────────────────

type memPedidos struct {
	mu      sync.Mutex
	rows    []*model.Pedido
	tickets map[uint]int
	now     func() time.Time
}

func newMemPedidos() *memPedidos {
	return &memPedidos{tickets: map[uint]int{}, now: func() time.Time { return reloj.Add(-time.Hour) }}
}

var _ repository.PedidoRepository = (*memPedidos)(nil)

func (m *memPedidos) NextTicketNumberTx(_ context.Context, _ *gorm.DB, empresaID uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[empresaID]++
	return m.tickets[empresaID], nil
}

func (m *memPedidos) CreateTx(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uint(len(m.rows) + 1)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	cp := *p
	m.rows = append(m.rows, &cp)
	return nil
}

// add inserts a committed pedido directly, as a finished checkout would.
func (m *memPedidos) add(empresaID uint, metodo, total string, creado time.Time) *model.Pedido {
	p := &model.Pedido{EmpresaID: empresaID, MetodoPago: metodo, Total: dec(total), CreatedAt: creado, TipoVenta: model.TipoMostrador}
	_ = m.CreateTx(context.Background(), nil, p)
	return p
}

func (m *memPedidos) FindByID(_ context.Context, empresaID, id uint) (*model.Pedido, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.ID == id && p.EmpresaID == empresaID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memPedidos) ListByRango(_ context.Context, empresaID uint, desde, hasta time.Time) ([]model.Pedido, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Pedido
	for i := len(m.rows) - 1; i >= 0; i-- {
		p := m.rows[i]
		if p.EmpresaID == empresaID && !p.CreatedAt.Before(desde) && p.CreatedAt.Before(hasta) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPedidos) DB() *gorm.DB { return nil }

func (m *memPedidos) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// ── usuarios ─────────────────────────────────────────────────────────────────

type memUsuarios struct {
	mu       sync.Mutex
	empresas map[uint]*model.Empresa
	usuarios map[uint]*model.Usuario
}

func newMemUsuarios() *memUsuarios {
	return &memUsuarios{
		empresas: map[uint]*model.Empresa{1: {ID: 1, Nombre: "Carniceria Lupita"}},
		usuarios: map[uint]*model.Usuario{7: {ID: 7, EmpresaID: 1, Username: "ana", Rol: RolCajero, Activo: true}},
	}
}

var _ repository.UsuarioRepository = (*memUsuarios)(nil)

func (m *memUsuarios) CrearEmpresaConAdmin(_ context.Context, e *model.Empresa, u *model.Usuario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.usuarios {
		if x.Username == u.Username {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	e.ID = uint(len(m.empresas) + 1)
	m.empresas[e.ID] = e
	u.ID = uint(len(m.usuarios) + 100)
	u.EmpresaID = e.ID
	m.usuarios[u.ID] = u
	return nil
}

func (m *memUsuarios) ExisteEmpresa(_ context.Context, nombre string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.empresas {
		if strings.EqualFold(e.Nombre, nombre) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsuarios) FindEmpresa(_ context.Context, id uint) (*model.Empresa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.empresas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (m *memUsuarios) Create(_ context.Context, u *model.Usuario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.usuarios {
		if x.Username == u.Username {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	u.ID = uint(len(m.usuarios) + 100)
	m.usuarios[u.ID] = u
	return nil
}

func (m *memUsuarios) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.usuarios {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsuarios) FindByID(_ context.Context, id uint) (*model.Usuario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *memUsuarios) ListByEmpresa(_ context.Context, empresaID uint) ([]model.Usuario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Usuario
	for _, u := range m.usuarios {
		if u.EmpresaID == empresaID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── impresión ────────────────────────────────────────────────────────────────

type impresoraStub struct {
	mu     sync.Mutex
	err    error
	textos []string
}

func (s *impresoraStub) Imprimir(_ context.Context, texto string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.textos = append(s.textos, texto)
	return nil
}

type colaStub struct {
	mu     sync.Mutex
	textos []string
}

func (c *colaStub) EnqueueImpresion(_ context.Context, texto string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textos = append(c.textos, texto)
	return nil
}

var sesionAna = Sesion{EmpresaID: 1, UsuarioID: 7, Username: "ana", SID: "s-1"}
