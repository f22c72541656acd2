package inventory

import (
	"context"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el libro de stock y el lote de recarga.
type TxRunner interface {
	Run(ctx context.Context, fn func(store repository.Store) error) error
}

// AuditLogger registra eventos en la cadena de auditoría (implementado por audit.Chain).
type AuditLogger interface {
	Log(ctx context.Context, entry appaudit.Entry) appaudit.LogResult
}
