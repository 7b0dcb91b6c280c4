package service_test

import (
	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	dErrors "victus/pkg/domain-errors"
)

func (s *ServiceSuite) newUpdateRequest() *models.UpdateConjuntoRequest {
	return &models.UpdateConjuntoRequest{
		CityID:          s.city.ID,
		AdministratorID: s.admin.ID,
		Name:            "Altos del Parque",
		Address:         "Calle 1 # 2-3",
		Phone:           "3001234567",
	}
}

func (s *ServiceSuite) TestUpdatePersistsChangesAndEmitsEvent() {
	view, err := s.svc.Create(s.ctx, s.newRequest())
	s.Require().NoError(err)

	req := s.newUpdateRequest()
	req.Name = "Altos del Parque II"
	req.Address = "Carrera 9 # 10-11"

	updated, err := s.svc.Update(s.ctx, view.ID, req)
	s.Require().NoError(err)
	s.Equal(view.ID, updated.ID)
	s.Equal("Altos del Parque II", updated.Name)

	stored, err := s.conjuntos.FindByID(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Equal("Carrera 9 # 10-11", stored.Address)

	events := s.publisher.all()
	s.Require().Len(events, 2)
	s.Equal(models.EventUpdated, events[1].Type)
	s.Equal(view.ID, events[1].Conjunto.ID)
}

func (s *ServiceSuite) TestUpdateDoesNotCollideWithItself() {
	view, err := s.svc.Create(s.ctx, s.newRequest())
	s.Require().NoError(err)

	// Same name and same phone as before: the record is excluded from its
	// own duplicate checks.
	updated, err := s.svc.Update(s.ctx, view.ID, s.newUpdateRequest())
	s.Require().NoError(err)
	s.Equal(view.ID, updated.ID)
}

func (s *ServiceSuite) TestUpdateDuplicateChecksAgainstOthers() {
	first, err := s.svc.Create(s.ctx, s.newRequest())
	s.Require().NoError(err)

	otherReq := s.newRequest()
	otherReq.Name = "Mirador del Norte"
	otherReq.Phone = "3112223344"
	other, err := s.svc.Create(s.ctx, otherReq)
	s.Require().NoError(err)

	s.Run("taking another record's phone is a conflict", func() {
		req := s.newUpdateRequest()
		req.Name = "Mirador del Norte"
		req.Phone = "3001234567" // held by first

		_, err := s.svc.Update(s.ctx, other.ID, req)
		de := s.requireCode(err, dErrors.CodeConflict)
		s.Equal("cliente: domain.conjunto.telefono.duplicated", de.Message)
	})

	s.Run("taking another record's name is a conflict", func() {
		req := s.newUpdateRequest()
		req.Name = "Altos del Parque" // held by first
		req.Phone = "3112223344"

		_, err := s.svc.Update(s.ctx, other.ID, req)
		de := s.requireCode(err, dErrors.CodeConflict)
		s.Equal("cliente: domain.conjunto.nombre.duplicated", de.Message)
	})

	// The holder of the contested values is untouched.
	stored, err := s.conjuntos.FindByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("3001234567", stored.Phone)
}

func (s *ServiceSuite) TestUpdateUnknownID() {
	_, err := s.svc.Update(s.ctx, uuid.New(), s.newUpdateRequest())
	s.requireCode(err, dErrors.CodeNotFound)
	s.Empty(s.publisher.all())
}

func (s *ServiceSuite) TestUpdatePreconditions() {
	view, err := s.svc.Create(s.ctx, s.newRequest())
	s.Require().NoError(err)

	s.Run("missing city reference", func() {
		req := s.newUpdateRequest()
		req.CityID = uuid.Nil
		_, err := s.svc.Update(s.ctx, view.ID, req)
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("malformed phone", func() {
		req := s.newUpdateRequest()
		req.Phone = "phone"
		_, err := s.svc.Update(s.ctx, view.ID, req)
		s.requireCode(err, dErrors.CodeValidation)
	})
}
