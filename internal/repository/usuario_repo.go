package repository

import (
	"context"

	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"gorm.io/gorm"
)

// UsuarioRepository covers both users and their Empresa, since an Empresa is
// only ever created together with its first user.
type UsuarioRepository interface {
	CrearEmpresaConAdmin(ctx context.Context, e *model.Empresa, u *model.Usuario) error
	ExisteEmpresa(ctx context.Context, nombre string) (bool, error)
	FindEmpresa(ctx context.Context, id uint) (*model.Empresa, error)

	Create(ctx context.Context, u *model.Usuario) error
	FindByUsername(ctx context.Context, username string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uint) (*model.Usuario, error)
	ListByEmpresa(ctx context.Context, empresaID uint) ([]model.Usuario, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) CrearEmpresaConAdmin(ctx context.Context, e *model.Empresa, u *model.Usuario) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		u.EmpresaID = e.ID
		return tx.Create(u).Error
	})
}

func (r *usuarioRepo) ExisteEmpresa(ctx context.Context, nombre string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Empresa{}).Where("LOWER(nombre) = LOWER(?)", nombre).Count(&n).Error
	return n > 0, err
}

func (r *usuarioRepo) FindEmpresa(ctx context.Context, id uint) (*model.Empresa, error) {
	var e model.Empresa
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	// Accept login by username OR email (case-insensitive email match)
	err := r.db.WithContext(ctx).Preload("Empresa").
		Where("(username = ? OR LOWER(email) = LOWER(?)) AND activo = true", username, username).
		First(&u).Error
	return &u, err
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uint) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Empresa").First(&u, id).Error
	return &u, err
}

func (r *usuarioRepo) ListByEmpresa(ctx context.Context, empresaID uint) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).Order("username ASC").Find(&users).Error
	return users, err
}
