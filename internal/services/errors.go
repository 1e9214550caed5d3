package services

import "errors"

// Common service errors
var (
	ErrNotFound        = errors.New("registro no encontrado")
	ErrInvalidPassword = errors.New("contraseña inválida")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrInvalidState    = errors.New("transición de estado inválida")
	ErrDuplicate       = errors.New("registro duplicado")
	ErrInvalidAmount   = errors.New("monto inválido")
	ErrOverpayment     = errors.New("el abono excede el saldo pendiente de la factura")
	ErrAlreadyReversed = errors.New("el abono ya fue reversado")
)
