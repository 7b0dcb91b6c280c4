package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"victus/internal/conjunto/models"
	"victus/pkg/platform/sentinel"
)

type ViviendaMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryViviendaStore
	ctx   context.Context

	conjuntoID uuid.UUID
}

func TestViviendaMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(ViviendaMemoryStoreSuite))
}

func (s *ViviendaMemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryViviendaStore()
	s.conjuntoID = uuid.New()
}

func (s *ViviendaMemoryStoreSuite) newVivienda(conjuntoID uuid.UUID, numero string) *models.Vivienda {
	v, err := models.NewVivienda(uuid.New(), conjuntoID, numero, "", "")
	s.Require().NoError(err)
	return v
}

func (s *ViviendaMemoryStoreSuite) TestSaveAndLookups() {
	s.Run("saves and finds by conjunto and numero", func() {
		v := s.newVivienda(s.conjuntoID, "101")
		s.Require().NoError(s.store.Save(s.ctx, v))

		found, err := s.store.FindByConjuntoAndNumero(s.ctx, s.conjuntoID, "101")
		s.Require().NoError(err)
		s.Equal(v.ID, found.ID)
		s.Equal(models.ViviendaTipoApartamento, found.Tipo)
	})

	s.Run("returns ErrNotFound for unknown numero", func() {
		_, err := s.store.FindByConjuntoAndNumero(s.ctx, s.conjuntoID, "999")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate numero within the conjunto", func() {
		s.Require().NoError(s.store.Save(s.ctx, s.newVivienda(s.conjuntoID, "201")))
		err := s.store.Save(s.ctx, s.newVivienda(s.conjuntoID, "201"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("same numero in another conjunto is allowed", func() {
		other := uuid.New()
		s.Require().NoError(s.store.Save(s.ctx, s.newVivienda(s.conjuntoID, "301")))
		s.Require().NoError(s.store.Save(s.ctx, s.newVivienda(other, "301")))
	})

	s.Run("upserts on same ID", func() {
		v := s.newVivienda(s.conjuntoID, "401")
		s.Require().NoError(s.store.Save(s.ctx, v))
		v.Estado = models.ViviendaEstadoOcupada
		s.Require().NoError(s.store.Save(s.ctx, v))

		found, err := s.store.FindByConjuntoAndNumero(s.ctx, s.conjuntoID, "401")
		s.Require().NoError(err)
		s.Equal(models.ViviendaEstadoOcupada, found.Estado)
	})
}

func (s *ViviendaMemoryStoreSuite) TestPaging() {
	for i := 1; i <= 5; i++ {
		s.Require().NoError(s.store.Save(s.ctx, s.newVivienda(s.conjuntoID, fmt.Sprintf("10%d", i))))
	}

	s.Run("pages in numero order", func() {
		items, total, err := s.store.FindByConjuntoID(s.ctx, s.conjuntoID, 0, 2)
		s.Require().NoError(err)
		s.Equal(5, total)
		s.Require().Len(items, 2)
		s.Equal("101", items[0].Numero)
		s.Equal("102", items[1].Numero)

		items, _, err = s.store.FindByConjuntoID(s.ctx, s.conjuntoID, 4, 2)
		s.Require().NoError(err)
		s.Require().Len(items, 1)
		s.Equal("105", items[0].Numero)
	})

	s.Run("offset past the end is an empty page", func() {
		items, total, err := s.store.FindByConjuntoID(s.ctx, s.conjuntoID, 10, 2)
		s.Require().NoError(err)
		s.Equal(5, total)
		s.Empty(items)
	})

	s.Run("unknown conjunto is an empty page", func() {
		items, total, err := s.store.FindByConjuntoID(s.ctx, uuid.New(), 0, 10)
		s.Require().NoError(err)
		s.Zero(total)
		s.Empty(items)
	})
}

func (s *ViviendaMemoryStoreSuite) TestDeleteByConjuntoID() {
	other := uuid.New()
	s.Require().NoError(s.store.Save(s.ctx, s.newVivienda(s.conjuntoID, "101")))
	s.Require().NoError(s.store.Save(s.ctx, s.newVivienda(s.conjuntoID, "102")))
	s.Require().NoError(s.store.Save(s.ctx, s.newVivienda(other, "101")))

	s.Require().NoError(s.store.DeleteByConjuntoID(s.ctx, s.conjuntoID))

	_, total, err := s.store.FindByConjuntoID(s.ctx, s.conjuntoID, 0, 10)
	s.Require().NoError(err)
	s.Zero(total)

	_, total, err = s.store.FindByConjuntoID(s.ctx, other, 0, 10)
	s.Require().NoError(err)
	s.Equal(1, total)

	s.Run("deleting nothing is not an error", func() {
		s.NoError(s.store.DeleteByConjuntoID(s.ctx, uuid.New()))
	})
}
