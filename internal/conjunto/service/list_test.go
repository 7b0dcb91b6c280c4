package service_test

import (
	"context"

	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	"victus/internal/conjunto/service"
	dErrors "victus/pkg/domain-errors"
)

// sharedSliceStore returns the same backing slice on every FindAll, the way
// a caching store might.
type sharedSliceStore struct {
	service.ConjuntoStore
	all []*models.Conjunto
}

func (s *sharedSliceStore) FindAll(context.Context) ([]*models.Conjunto, error) {
	return s.all, nil
}

func (s *ServiceSuite) seedListing() (bogota, cali models.City) {
	bogota = s.city
	cali = models.City{ID: uuid.New(), Name: "Cali", DepartmentID: uuid.New(), DepartmentName: "Valle del Cauca", Active: true}
	s.cities.Put(cali)

	seed := func(city models.City, name string) {
		req := s.newRequest()
		req.CityID = city.ID
		req.Name = name
		req.Phone = ""
		_, err := s.svc.Create(s.ctx, req)
		s.Require().NoError(err)
	}
	seed(bogota, "Altos del Parque")
	seed(bogota, "Mirador del Norte")
	seed(cali, "Portal del Río")
	return bogota, cali
}

func (s *ServiceSuite) TestGet() {
	view, err := s.svc.Create(s.ctx, s.newRequest())
	s.Require().NoError(err)

	s.Run("returns the denormalized view", func() {
		got, err := s.svc.Get(s.ctx, view.ID)
		s.Require().NoError(err)
		s.Equal(view.ID, got.ID)
		s.Equal("Bogotá", got.CityName)
	})

	s.Run("unknown ID is not found", func() {
		_, err := s.svc.Get(s.ctx, uuid.New())
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("nil ID is a validation error", func() {
		_, err := s.svc.Get(s.ctx, uuid.Nil)
		s.requireCode(err, dErrors.CodeValidation)
	})
}

func (s *ServiceSuite) TestListFilters() {
	bogota, cali := s.seedListing()

	s.Run("no filter returns everything", func() {
		views, err := s.svc.List(s.ctx, service.ListFilter{})
		s.Require().NoError(err)
		s.Len(views, 3)
	})

	s.Run("filters by city", func() {
		views, err := s.svc.List(s.ctx, service.ListFilter{CityID: cali.ID})
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal("Portal del Río", views[0].Name)
		s.Equal("Valle del Cauca", views[0].DepartmentName)
	})

	s.Run("filters by department", func() {
		views, err := s.svc.List(s.ctx, service.ListFilter{DepartmentID: bogota.DepartmentID})
		s.Require().NoError(err)
		s.Len(views, 2)
	})

	s.Run("city and department must agree", func() {
		views, err := s.svc.List(s.ctx, service.ListFilter{
			CityID:       bogota.ID,
			DepartmentID: cali.DepartmentID,
		})
		s.Require().NoError(err)
		s.Empty(views)
	})

	s.Run("name substring is case-insensitive", func() {
		views, err := s.svc.List(s.ctx, service.ListFilter{Name: "DEL"})
		s.Require().NoError(err)
		s.Len(views, 3)

		views, err = s.svc.List(s.ctx, service.ListFilter{Name: "mirador"})
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal("Mirador del Norte", views[0].Name)
	})

	s.Run("name combines with structural filters", func() {
		views, err := s.svc.List(s.ctx, service.ListFilter{CityID: bogota.ID, Name: "portal"})
		s.Require().NoError(err)
		s.Empty(views)
	})

	s.Run("no match is an empty listing, not an error", func() {
		views, err := s.svc.List(s.ctx, service.ListFilter{Name: "inexistente"})
		s.Require().NoError(err)
		s.Empty(views)
	})
}

func (s *ServiceSuite) TestListNameFilterDoesNotMutateStoreSlice() {
	shared := []*models.Conjunto{
		{ID: uuid.New(), CityID: s.city.ID, Name: "Altos del Parque", Address: "Calle 1"},
		{ID: uuid.New(), CityID: s.city.ID, Name: "Mirador del Norte", Address: "Calle 2"},
		{ID: uuid.New(), CityID: s.city.ID, Name: "Portal del Río", Address: "Calle 3"},
	}
	svc := service.New(&sharedSliceStore{s.conjuntos, shared}, s.viviendas, s.cities, s.admins,
		service.WithMessageResolver(catalogStub{}),
	)

	views, err := svc.List(s.ctx, service.ListFilter{Name: "mirador"})
	s.Require().NoError(err)
	s.Require().Len(views, 1)

	s.Equal("Altos del Parque", shared[0].Name)
	s.Equal("Mirador del Norte", shared[1].Name)
	s.Equal("Portal del Río", shared[2].Name)
}
