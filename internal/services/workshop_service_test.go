package services

import (
	"context"
	"errors"
	"testing"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
)

func TestWorkshopService_EditorIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tamara := env.repo.addUser("tamara", models.RoleEditor)
	ignacio := env.repo.addUser("ignacio", models.RoleEditor)
	admin := env.repo.addUser("root", models.RoleAdmin)

	mine := env.repo.addWorkshop("Taller de Tamara", tamara.ID)
	env.repo.addWorkshop("Taller de Ignacio", ignacio.ID)

	t.Run("list shows only own workshops", func(t *testing.T) {
		list, err := env.workshops.List(ctx, tamara.ID, repositories.WorkshopFilters{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if list.Total != 1 || list.Workshops[0].Name != "Taller de Tamara" {
			t.Errorf("editor sees %d workshops: %+v", list.Total, list.Workshops)
		}
	})

	t.Run("admin sees all", func(t *testing.T) {
		list, err := env.workshops.List(ctx, admin.ID, repositories.WorkshopFilters{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if list.Total != 2 {
			t.Errorf("admin sees %d workshops, want 2", list.Total)
		}
	})

	t.Run("foreign workshop reads as missing", func(t *testing.T) {
		if _, err := env.workshops.GetByID(ctx, mine.ID, ignacio.ID); !errors.Is(err, ErrWorkshopNotFound) {
			t.Errorf("GetByID as stranger = %v, want ErrWorkshopNotFound", err)
		}
		if err := env.workshops.Delete(ctx, mine.ID, ignacio.ID); !errors.Is(err, ErrWorkshopNotFound) {
			t.Errorf("Delete as stranger = %v, want ErrWorkshopNotFound", err)
		}
	})

	t.Run("admin reaches any workshop", func(t *testing.T) {
		if _, err := env.workshops.GetByID(ctx, mine.ID, admin.ID); err != nil {
			t.Errorf("GetByID as admin failed: %v", err)
		}
	})
}

func TestWorkshopService_UpdateKeepsOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tamara := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Original", tamara.ID)

	name := "Renombrado"
	objective := "Explorar la expresión plástica"
	updated, err := env.workshops.Update(ctx, workshop.ID, &UpdateWorkshopRequest{Name: &name, Objective: &objective}, tamara.ID)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != name {
		t.Errorf("Name = %q, want %q", updated.Name, name)
	}
	if updated.OwnerID != tamara.ID {
		t.Errorf("OwnerID changed to %d", updated.OwnerID)
	}
}

func TestWorkshopService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tamara := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Para borrar", tamara.ID)
	session := env.repo.addSession("Sesión", workshop.ID)
	participant := env.repo.addParticipant("Luna", workshop.ID)

	// one saved observation hanging off the session
	step, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, tamara.ID)
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}
	answerAll(t, env, step.FlowID, tamara.ID, string(models.AnswerYes))
	record, err := env.observation.Complete(ctx, step.FlowID, &CompleteObservationRequest{}, tamara.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if err := env.workshops.Delete(ctx, workshop.ID, tamara.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := env.workshops.GetByID(ctx, workshop.ID, tamara.ID); !errors.Is(err, ErrWorkshopNotFound) {
		t.Errorf("workshop still present: %v", err)
	}
	if _, err := env.sessions.GetByID(ctx, session.ID, tamara.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("session survived cascade: %v", err)
	}
	if _, err := env.observation.GetByID(ctx, record.ID, tamara.ID); !errors.Is(err, ErrObservationNotFound) {
		t.Errorf("observation survived cascade: %v", err)
	}
}

func TestWorkshopService_Stats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tamara := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Con datos", tamara.ID)
	session := env.repo.addSession("Sesión", workshop.ID)
	participant := env.repo.addParticipant("Luna", workshop.ID)
	env.repo.addParticipant("Bruno", workshop.ID)

	step, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, tamara.ID)
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}
	answerAll(t, env, step.FlowID, tamara.ID, string(models.AnswerYes))
	if _, err := env.observation.Complete(ctx, step.FlowID, &CompleteObservationRequest{}, tamara.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	stats, err := env.workshops.GetStats(ctx, workshop.ID, tamara.ID)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.ParticipantCount != 2 || stats.SessionCount != 1 || stats.ObservationCount != 1 {
		t.Errorf("stats = %+v, want 2 participants, 1 session, 1 observation", stats)
	}
}
