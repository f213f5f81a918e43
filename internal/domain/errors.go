package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del núcleo multi-tenant. Los de scope y membresía se evalúan antes de cualquier mutación.
var (
	// ErrNoActiveTenant ninguna regla de resolución produjo un negocio activo.
	ErrNoActiveTenant = errors.New("no hay un negocio activo seleccionado")
	// ErrCrossTenantAccess el objeto o negocio no pertenece al scope del llamador.
	ErrCrossTenantAccess = errors.New("acceso entre negocios denegado")
	// ErrTenantInactive el negocio existe pero no está ACTIVE.
	ErrTenantInactive = errors.New("el negocio no está activo")
	// ErrIdentifierInvalid el código escaneado no produce un identificador canónico.
	ErrIdentifierInvalid = errors.New("identificador inválido")
	// ErrTransientLock la fila está bloqueada por otra transacción; el llamador puede reintentar.
	ErrTransientLock = errors.New("recurso ocupado, reintente")
)
