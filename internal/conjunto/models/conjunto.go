package models

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "victus/pkg/domain-errors"
)

const (
	maxNameLength    = 150
	maxAddressLength = 180
)

// phonePattern: digits only, length 1..10. The same rule backs the unique
// phone constraint in the stores.
var phonePattern = regexp.MustCompile(`^[0-9]{1,10}$`)

// Conjunto is the aggregate root for a residential complex.
//
// Invariants:
//   - Name is non-empty and at most 150 characters
//   - Address is non-empty and at most 180 characters
//   - Phone, when present, is digits only and at most 10 characters
//   - CityID references an existing city
//   - AdministratorID references an administrator that is active at
//     creation/update time (enforced at the service layer, which is the
//     only place both entities are loaded)
//
// Name is unique within a city (case-insensitive) and phone is unique across
// all conjuntos. Both are pre-checked by the service and enforced again by
// the store on save, which closes the check/insert race.
type Conjunto struct {
	ID              uuid.UUID `json:"id"`
	CityID          uuid.UUID `json:"ciudadId"`
	AdministratorID uuid.UUID `json:"administradorId"`
	Name            string    `json:"nombre"`
	Address         string    `json:"direccion"`
	Phone           string    `json:"telefono,omitempty"`
}

// NewConjunto constructs a Conjunto, validating its field invariants.
func NewConjunto(id, cityID, administratorID uuid.UUID, name, address, phone string) (*Conjunto, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	phone = strings.TrimSpace(phone)

	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "el nombre del conjunto es obligatorio")
	}
	// Length limits count characters, not bytes: accented names must not
	// lose half their budget to UTF-8 encoding.
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "el nombre del conjunto debe tener máximo 150 caracteres")
	}
	if address == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "la dirección del conjunto es obligatoria")
	}
	if utf8.RuneCountInString(address) > maxAddressLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "la dirección del conjunto debe tener máximo 180 caracteres")
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "el teléfono del conjunto debe contener solo dígitos (máximo 10)")
	}
	return &Conjunto{
		ID:              id,
		CityID:          cityID,
		AdministratorID: administratorID,
		Name:            name,
		Address:         address,
		Phone:           phone,
	}, nil
}

// ValidPhone reports whether phone matches the digits-only 1..10 rule.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizeName returns the deterministic form used for name comparisons.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// City is a dependent entity. Immutable once loaded for a request.
// DepartmentName is denormalized at load time so views need no extra fetch.
type City struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"nombre"`
	DepartmentID   uuid.UUID `json:"departamentoId"`
	DepartmentName string    `json:"departamentoNombre"`
	Active         bool      `json:"activo"`
}

// Administrator is a dependent entity. Only active administrators may be
// referenced by a new or updated conjunto.
type Administrator struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"nombres"`
	LastName  string    `json:"apellidos"`
	Active    bool      `json:"activo"`
}

// CreateConjuntoRequest is the inbound payload for creating a conjunto.
// ID may be supplied by the caller; when absent the service generates one.
type CreateConjuntoRequest struct {
	ID              uuid.UUID `json:"id,omitempty"`
	CityID          uuid.UUID `json:"ciudadId"`
	AdministratorID uuid.UUID `json:"administradorId"`
	Name            string    `json:"nombre"`
	Address         string    `json:"direccion"`
	Phone           string    `json:"telefono,omitempty"`
}

// Normalize trims free-text fields in place.
func (r *CreateConjuntoRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.Phone = strings.TrimSpace(r.Phone)
}

// UpdateConjuntoRequest is the inbound payload for updating a conjunto.
type UpdateConjuntoRequest struct {
	CityID          uuid.UUID `json:"ciudadId"`
	AdministratorID uuid.UUID `json:"administradorId"`
	Name            string    `json:"nombre"`
	Address         string    `json:"direccion"`
	Phone           string    `json:"telefono,omitempty"`
}

// Normalize trims free-text fields in place.
func (r *UpdateConjuntoRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.Phone = strings.TrimSpace(r.Phone)
}

// ConjuntoView is the representation exposed to callers of create/get/list,
// with the city and department display names denormalized.
type ConjuntoView struct {
	ID              uuid.UUID `json:"id"`
	CityID          uuid.UUID `json:"ciudadId"`
	AdministratorID uuid.UUID `json:"administradorId"`
	Name            string    `json:"nombre"`
	Address         string    `json:"direccion"`
	Phone           string    `json:"telefono,omitempty"`
	CityName        string    `json:"ciudadNombre"`
	DepartmentName  string    `json:"departamentoNombre"`
}

// NewConjuntoView builds the outbound representation. city may be nil when
// display names could not be resolved; the structural fields still carry.
func NewConjuntoView(c *Conjunto, city *City) *ConjuntoView {
	v := &ConjuntoView{
		ID:              c.ID,
		CityID:          c.CityID,
		AdministratorID: c.AdministratorID,
		Name:            c.Name,
		Address:         c.Address,
		Phone:           c.Phone,
	}
	if city != nil {
		v.CityName = city.Name
		v.DepartmentName = city.DepartmentName
	}
	return v
}
