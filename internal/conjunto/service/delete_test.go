package service_test

import (
	"github.com/google/uuid"

	"victus/internal/conjunto/models"
	dErrors "victus/pkg/domain-errors"
)

func (s *ServiceSuite) TestDeleteEmitsEventBeforeRemoval() {
	view, err := s.svc.Create(s.ctx, s.newRequest())
	s.Require().NoError(err)

	// At emission time the record must still be loadable: subscribers see
	// the final state of the conjunto that is about to disappear.
	s.publisher.onPublish = func(ev models.Event) {
		if ev.Type != models.EventDeleted {
			return
		}
		_, findErr := s.conjuntos.FindByID(s.ctx, ev.Conjunto.ID)
		s.NoError(findErr, "record already gone when DELETED was emitted")
	}

	s.Require().NoError(s.svc.Delete(s.ctx, view.ID))

	events := s.publisher.all()
	s.Require().Len(events, 2)
	deleted := events[1]
	s.Equal(models.EventDeleted, deleted.Type)
	s.Equal(view.ID, deleted.Conjunto.ID)
	s.Equal("Altos del Parque", deleted.Conjunto.Name)
	s.Equal("Bogotá", deleted.Conjunto.CityName)
}

func (s *ServiceSuite) TestDeleteUnknownIDEmitsNothing() {
	err := s.svc.Delete(s.ctx, uuid.New())
	s.requireCode(err, dErrors.CodeNotFound)
	s.Empty(s.publisher.all())
}

func (s *ServiceSuite) TestDeleteRequiresID() {
	err := s.svc.Delete(s.ctx, uuid.Nil)
	s.requireCode(err, dErrors.CodeValidation)
}

// The full lifecycle: a name blocked by a duplicate becomes available again
// once the holder is deleted.
func (s *ServiceSuite) TestDeleteFreesNameForReuse() {
	first, err := s.svc.Create(s.ctx, s.newRequest())
	s.Require().NoError(err)

	dup := s.newRequest()
	dup.Phone = "3201112233"
	_, err = s.svc.Create(s.ctx, dup)
	s.requireCode(err, dErrors.CodeConflict)

	s.Require().NoError(s.svc.Delete(s.ctx, first.ID))

	recreated, err := s.svc.Create(s.ctx, dup)
	s.Require().NoError(err)
	s.NotEqual(first.ID, recreated.ID)

	types := make([]models.EventType, 0, 3)
	for _, ev := range s.publisher.all() {
		types = append(types, ev.Type)
	}
	s.Equal([]models.EventType{models.EventCreated, models.EventDeleted, models.EventCreated}, types)
}
