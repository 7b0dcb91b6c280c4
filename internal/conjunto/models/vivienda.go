package models

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "victus/pkg/domain-errors"
)

const maxNumeroLength = 10

// ViviendaTipo classifies a housing unit.
type ViviendaTipo string

const (
	ViviendaTipoApartamento ViviendaTipo = "APARTAMENTO"
	ViviendaTipoCasa        ViviendaTipo = "CASA"
	ViviendaTipoLocal       ViviendaTipo = "LOCAL"
)

// ViviendaEstado is the occupancy state of a housing unit.
type ViviendaEstado string

const (
	ViviendaEstadoDisponible    ViviendaEstado = "DISPONIBLE"
	ViviendaEstadoOcupada       ViviendaEstado = "OCUPADA"
	ViviendaEstadoMantenimiento ViviendaEstado = "EN_MANTENIMIENTO"
)

// Vivienda is a housing unit inside a conjunto.
//
// Invariants:
//   - Numero is non-empty and at most 10 characters
//   - Numero is unique within its conjunto (pre-checked by the service,
//     enforced again by the store on save)
//   - Tipo and Estado take values from their closed sets
type Vivienda struct {
	ID         uuid.UUID      `json:"id"`
	ConjuntoID uuid.UUID      `json:"conjuntoId"`
	Numero     string         `json:"numero"`
	Tipo       ViviendaTipo   `json:"tipo"`
	Estado     ViviendaEstado `json:"estado"`
}

// NewVivienda constructs a Vivienda, validating its field invariants. An
// empty tipo defaults to APARTAMENTO and an empty estado to DISPONIBLE, the
// registration defaults.
func NewVivienda(id, conjuntoID uuid.UUID, numero string, tipo ViviendaTipo, estado ViviendaEstado) (*Vivienda, error) {
	numero = strings.TrimSpace(numero)

	if numero == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "el número de la vivienda es obligatorio")
	}
	if utf8.RuneCountInString(numero) > maxNumeroLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "el número de la vivienda debe tener máximo 10 caracteres")
	}
	if tipo == "" {
		tipo = ViviendaTipoApartamento
	}
	switch tipo {
	case ViviendaTipoApartamento, ViviendaTipoCasa, ViviendaTipoLocal:
	default:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "el tipo de vivienda debe ser APARTAMENTO, CASA o LOCAL")
	}
	if estado == "" {
		estado = ViviendaEstadoDisponible
	}
	switch estado {
	case ViviendaEstadoDisponible, ViviendaEstadoOcupada, ViviendaEstadoMantenimiento:
	default:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "el estado de la vivienda debe ser DISPONIBLE, OCUPADA o EN_MANTENIMIENTO")
	}
	return &Vivienda{
		ID:         id,
		ConjuntoID: conjuntoID,
		Numero:     numero,
		Tipo:       tipo,
		Estado:     estado,
	}, nil
}

// CreateViviendaRequest is the inbound payload for registering a vivienda.
// The owning conjunto comes from the URL, not the body.
type CreateViviendaRequest struct {
	Numero string         `json:"numero"`
	Tipo   ViviendaTipo   `json:"tipo,omitempty"`
	Estado ViviendaEstado `json:"estado,omitempty"`
}

// Normalize trims free-text fields in place.
func (r *CreateViviendaRequest) Normalize() {
	r.Numero = strings.TrimSpace(r.Numero)
	r.Tipo = ViviendaTipo(strings.TrimSpace(string(r.Tipo)))
	r.Estado = ViviendaEstado(strings.TrimSpace(string(r.Estado)))
}

// ViviendaPage is one page of a conjunto's viviendas.
type ViviendaPage struct {
	Content       []*Vivienda `json:"content"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalElements int         `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
}
