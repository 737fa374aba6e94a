package infra

import (
	"fmt"

	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the pool and brings the schema up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table, then applies what GORM
// tags cannot express. Both steps are idempotent; integration tests call
// this directly against a fresh container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Empresa{},
		&model.Usuario{},
		&model.Producto{},
		&model.Cliente{},
		&model.Arqueo{},
		&model.Pedido{},
		&model.PedidoItem{},
		&model.Retiro{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches adds the partial indexes behind the "pending" pool
// (arqueo_id IS NULL) and the check constraints of the data model.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"partial index pedidos pendientes",
			`CREATE INDEX IF NOT EXISTS idx_pedidos_sin_arqueo
			    ON pedidos (empresa_id, created_at) WHERE arqueo_id IS NULL`},
		{"partial index retiros pendientes",
			`CREATE INDEX IF NOT EXISTS idx_retiros_sin_arqueo
			    ON retiros (empresa_id, created_at) WHERE arqueo_id IS NULL`},
		{"check retiro monto > 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_retiros_monto_positivo') THEN
    ALTER TABLE retiros ADD CONSTRAINT chk_retiros_monto_positivo CHECK (monto > 0);
  END IF;
END $$`},
		{"check item cantidad > 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_pedido_items_cantidad_positiva') THEN
    ALTER TABLE pedido_items ADD CONSTRAINT chk_pedido_items_cantidad_positiva CHECK (cantidad > 0);
  END IF;
END $$`},
		{"check producto stock >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_stock_no_negativo') THEN
    ALTER TABLE productos ADD CONSTRAINT chk_productos_stock_no_negativo CHECK (stock IS NULL OR stock >= 0);
  END IF;
END $$`},
		{"unique ticket per empresa",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_pedidos_empresa_ticket ON pedidos (empresa_id, numero_ticket)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
