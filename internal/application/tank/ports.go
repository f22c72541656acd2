package tank

import (
	"context"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(store repository.Store) error) error
}

// AuditLogger registra eventos en la cadena de auditoría.
type AuditLogger interface {
	Log(ctx context.Context, entry appaudit.Entry) appaudit.LogResult
}
