package inventory

import (
	"fmt"

	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// BulkDelta signo del movimiento de granel: receive, transfer_in y adjustment suman;
// dispense, transfer_out y loss restan.
func BulkDelta(t entity.BulkMovementType, litres decimal.Decimal) (decimal.Decimal, error) {
	if !litres.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: los litros deben ser positivos", domain.ErrInvalidInput)
	}
	switch t {
	case entity.BulkReceive, entity.BulkTransferIn, entity.BulkAdjustment:
		return litres, nil
	case entity.BulkDispense, entity.BulkTransferOut, entity.BulkLoss:
		return litres.Neg(), nil
	}
	return decimal.Zero, fmt.Errorf("%w: tipo de movimiento de granel %q", domain.ErrInvalidInput, t)
}

// NextLevel nivel resultante; rechaza si queda fuera de [0, capacidad].
func NextLevel(tank *entity.Tank, t entity.BulkMovementType, litres decimal.Decimal) (decimal.Decimal, error) {
	delta, err := BulkDelta(t, litres)
	if err != nil {
		return decimal.Zero, err
	}
	next := tank.CurrentLevelLitres.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: nivel insuficiente en %s (%s L disponibles, %s L solicitados)",
			domain.ErrCapacityViolation, tank.TankCode, tank.CurrentLevelLitres.StringFixed(2), litres.StringFixed(2))
	}
	if next.GreaterThan(tank.CapacityLitres) {
		return decimal.Zero, fmt.Errorf("%w: %s excede la capacidad (%s L > %s L)",
			domain.ErrCapacityViolation, tank.TankCode, next.StringFixed(2), tank.CapacityLitres.StringFixed(2))
	}
	return next, nil
}

// CheckLevel valida una lectura: 0 <= level <= capacidad.
func CheckLevel(tank *entity.Tank, level decimal.Decimal) error {
	if level.IsNegative() || level.GreaterThan(tank.CapacityLitres) {
		return fmt.Errorf("%w: lectura %s L fuera de [0, %s] en %s",
			domain.ErrCapacityViolation, level.StringFixed(2), tank.CapacityLitres.StringFixed(2), tank.TankCode)
	}
	return nil
}

// CheckLimits valida capacidad, mínimo, máximo y nivel actual de un tanque.
func CheckLimits(tank *entity.Tank) error {
	if !tank.CapacityLitres.IsPositive() {
		return fmt.Errorf("%w: la capacidad debe ser positiva", domain.ErrInvalidInput)
	}
	if tank.MinimumLevelLitres.IsNegative() ||
		tank.MinimumLevelLitres.GreaterThan(tank.MaximumLevelLitres) ||
		tank.MaximumLevelLitres.GreaterThan(tank.CapacityLitres) {
		return fmt.Errorf("%w: se requiere 0 <= mínimo <= máximo <= capacidad", domain.ErrInvalidInput)
	}
	if tank.CurrentLevelLitres.IsNegative() || tank.CurrentLevelLitres.GreaterThan(tank.CapacityLitres) {
		return fmt.Errorf("%w: el nivel actual queda fuera de la capacidad", domain.ErrCapacityViolation)
	}
	return nil
}

// TankAlert describe un tanque fuera de su rango operativo.
type TankAlert struct {
	Tank  *entity.Tank
	Level string // "low" | "high"
}

// AlertFor devuelve la alerta del tanque, o nil si está dentro de [mínimo, máximo].
func AlertFor(tank *entity.Tank) *TankAlert {
	switch {
	case tank.CurrentLevelLitres.LessThan(tank.MinimumLevelLitres):
		return &TankAlert{Tank: tank, Level: "low"}
	case tank.MaximumLevelLitres.IsPositive() && tank.CurrentLevelLitres.GreaterThan(tank.MaximumLevelLitres):
		return &TankAlert{Tank: tank, Level: "high"}
	}
	return nil
}
