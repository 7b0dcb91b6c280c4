package service_test

import (
	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	dErrors "victus/pkg/domain-errors"
)

func (s *ServiceSuite) createConjunto() *models.ConjuntoView {
	view, err := s.svc.Create(s.ctx, s.newRequest())
	s.Require().NoError(err)
	return view
}

func (s *ServiceSuite) TestCreateVivienda() {
	conjunto := s.createConjunto()

	s.Run("registers with defaults", func() {
		v, err := s.svc.CreateVivienda(s.ctx, conjunto.ID, &models.CreateViviendaRequest{Numero: " 101 "})
		s.Require().NoError(err)
		s.Equal("101", v.Numero, "numero is trimmed")
		s.Equal(conjunto.ID, v.ConjuntoID)
		s.Equal(models.ViviendaTipoApartamento, v.Tipo)
		s.Equal(models.ViviendaEstadoDisponible, v.Estado)
	})

	s.Run("honors explicit tipo and estado", func() {
		v, err := s.svc.CreateVivienda(s.ctx, conjunto.ID, &models.CreateViviendaRequest{
			Numero: "L-1",
			Tipo:   models.ViviendaTipoLocal,
			Estado: models.ViviendaEstadoOcupada,
		})
		s.Require().NoError(err)
		s.Equal(models.ViviendaTipoLocal, v.Tipo)
		s.Equal(models.ViviendaEstadoOcupada, v.Estado)
	})

	s.Run("unknown conjunto is not found", func() {
		_, err := s.svc.CreateVivienda(s.ctx, uuid.New(), &models.CreateViviendaRequest{Numero: "102"})
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("nil conjunto ID is a validation error", func() {
		_, err := s.svc.CreateVivienda(s.ctx, uuid.Nil, &models.CreateViviendaRequest{Numero: "102"})
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("duplicate numero within the conjunto conflicts", func() {
		_, err := s.svc.CreateVivienda(s.ctx, conjunto.ID, &models.CreateViviendaRequest{Numero: "101"})
		de := s.requireCode(err, dErrors.CodeConflict)
		s.Equal("Ya existe una vivienda con ese número en el conjunto.", de.Message)
	})

	s.Run("field invariants surface as validation", func() {
		_, err := s.svc.CreateVivienda(s.ctx, conjunto.ID, &models.CreateViviendaRequest{Numero: ""})
		s.requireCode(err, dErrors.CodeValidation)

		_, err = s.svc.CreateVivienda(s.ctx, conjunto.ID, &models.CreateViviendaRequest{Numero: "103", Tipo: "CABAÑA"})
		s.requireCode(err, dErrors.CodeValidation)
	})
}

func (s *ServiceSuite) TestCreateViviendaSameNumeroAcrossConjuntos() {
	first := s.createConjunto()

	other := s.newRequest()
	other.Name = "Mirador del Norte"
	other.Phone = "3109998877"
	second, err := s.svc.Create(s.ctx, other)
	s.Require().NoError(err)

	_, err = s.svc.CreateVivienda(s.ctx, first.ID, &models.CreateViviendaRequest{Numero: "101"})
	s.Require().NoError(err)
	_, err = s.svc.CreateVivienda(s.ctx, second.ID, &models.CreateViviendaRequest{Numero: "101"})
	s.NoError(err)
}

func (s *ServiceSuite) TestListViviendas() {
	conjunto := s.createConjunto()
	for _, numero := range []string{"103", "101", "102"} {
		_, err := s.svc.CreateVivienda(s.ctx, conjunto.ID, &models.CreateViviendaRequest{Numero: numero})
		s.Require().NoError(err)
	}

	s.Run("defaults cover the whole set in numero order", func() {
		page, err := s.svc.ListViviendas(s.ctx, conjunto.ID, 0, 0)
		s.Require().NoError(err)
		s.Equal(3, page.TotalElements)
		s.Equal(1, page.TotalPages)
		s.Require().Len(page.Content, 3)
		s.Equal("101", page.Content[0].Numero)
		s.Equal("103", page.Content[2].Numero)
	})

	s.Run("pages by size", func() {
		page, err := s.svc.ListViviendas(s.ctx, conjunto.ID, 1, 2)
		s.Require().NoError(err)
		s.Equal(3, page.TotalElements)
		s.Equal(2, page.TotalPages)
		s.Require().Len(page.Content, 1)
		s.Equal("103", page.Content[0].Numero)
	})

	s.Run("page past the end is empty content, not an error", func() {
		page, err := s.svc.ListViviendas(s.ctx, conjunto.ID, 5, 2)
		s.Require().NoError(err)
		s.NotNil(page.Content)
		s.Empty(page.Content)
	})

	s.Run("unknown conjunto is not found", func() {
		_, err := s.svc.ListViviendas(s.ctx, uuid.New(), 0, 0)
		s.requireCode(err, dErrors.CodeNotFound)
	})
}

func (s *ServiceSuite) TestDeleteConjuntoRemovesItsViviendas() {
	conjunto := s.createConjunto()
	_, err := s.svc.CreateVivienda(s.ctx, conjunto.ID, &models.CreateViviendaRequest{Numero: "101"})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Delete(s.ctx, conjunto.ID))

	_, total, err := s.viviendas.FindByConjuntoID(s.ctx, conjunto.ID, 0, 10)
	s.Require().NoError(err)
	s.Zero(total)
}
