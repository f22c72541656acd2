package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrValidationMismatch = errors.New("los conteos no cuadran")
	ErrCapacityViolation  = errors.New("límite de capacidad del tanque")
	ErrAlreadyResolved    = errors.New("la varianza ya fue resuelta")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrDuplicate          = errors.New("recurso duplicado")
)

// NotFoundError identifica la entidad que no existe. errors.Is(err, ErrNotFound) es true.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Entity, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// TransitionError indica el estado actual y el solicitado de una transición rechazada.
type TransitionError struct {
	Entity    string
	Ref       string
	Current   string
	Requested string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: %v: %s -> %s", e.Entity, e.Ref, ErrInvalidTransition, e.Current, e.Requested)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// NewTransitionError construye un TransitionError.
func NewTransitionError(entity, ref, current, requested string) error {
	return &TransitionError{Entity: entity, Ref: ref, Current: current, Requested: requested}
}

// Reason etiqueta corta del error para métricas y logs.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrValidationMismatch):
		return "validation_mismatch"
	case errors.Is(err, ErrCapacityViolation):
		return "capacity_violation"
	case errors.Is(err, ErrAlreadyResolved):
		return "already_resolved"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	}
	return "internal"
}
