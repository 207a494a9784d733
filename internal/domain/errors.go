package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Cada uno identifica una clase de fallo; la capa HTTP los traduce a códigos de estado.
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrUnauthorized            = errors.New("no autorizado")
	ErrForbidden               = errors.New("acceso denegado")
	ErrInvalidStateTransition  = errors.New("transición de estado inválida")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrInvalidUnitForProduct   = errors.New("unidad no válida para el producto")
	ErrInvalidQuantity         = errors.New("cantidad inválida")
	ErrInvalidMovementType     = errors.New("tipo de movimiento inválido")
	ErrApprovalExceedsRequest  = errors.New("la cantidad aprobada excede la solicitada")
	ErrReceivingExceedsPending = errors.New("la cantidad recibida excede la pendiente")
	ErrPersistence             = errors.New("error de persistencia")
)

// Error agrega un mensaje legible (producto, cantidades, estado) a un error de dominio.
// errors.Is funciona contra Kind y contra Cause.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Errorf construye un *Error del tipo kind con mensaje formateado.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Persistence envuelve un error del almacenamiento. op describe la operación ("insert movimiento").
func Persistence(op string, cause error) error {
	return &Error{Kind: ErrPersistence, Msg: op + ": " + cause.Error(), Cause: cause}
}

// Message devuelve el mensaje para el cliente: el de *Error si existe, si no el del sentinel.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Error()
	}
	return err.Error()
}
