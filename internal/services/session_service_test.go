package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/arteterapia/workshop-service/internal/models"
)

func TestParseMaterials(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "simple list", raw: "arcilla,témperas,pinceles", want: []string{"arcilla", "témperas", "pinceles"}},
		{name: "messy whitespace and empties", raw: "a, b ,, c  ", want: []string{"a", "b", "c"}},
		{name: "empty string", raw: "", want: nil},
		{name: "only whitespace", raw: "   ", want: nil},
		{name: "only commas", raw: ",,,", want: nil},
		{name: "single item", raw: "papel", want: []string{"papel"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseMaterials(tt.raw)
			if tt.want == nil {
				if got != nil {
					t.Errorf("parseMaterials(%q) = %v, want nil", tt.raw, got)
				}
				return
			}
			if !reflect.DeepEqual([]string(got), tt.want) {
				t.Errorf("parseMaterials(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseMaterials_Idempotent(t *testing.T) {
	first := parseMaterials("arcilla, témperas ,pinceles")
	second := normalizeMaterials(first)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reparsing changed the list: %v vs %v", first, second)
	}
}

func TestSessionService_CreateWithMaterials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Pintura", owner.ID)

	raw := "arcilla, témperas ,, pinceles  "
	session, err := env.sessions.Create(ctx, workshop.ID, &CreateSessionRequest{
		Prompt:    "Pintar un recuerdo",
		Materials: &raw,
	}, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	want := []string{"arcilla", "témperas", "pinceles"}
	if !reflect.DeepEqual([]string(session.Materials), want) {
		t.Errorf("Materials = %v, want %v", session.Materials, want)
	}
}

func TestSessionService_CreateWithoutMaterials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Pintura", owner.ID)

	session, err := env.sessions.Create(ctx, workshop.ID, &CreateSessionRequest{Prompt: "Dibujo libre"}, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if session.Materials != nil {
		t.Errorf("Materials = %v, want nil", session.Materials)
	}
}

func TestSessionService_UpdateClearsMaterials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Pintura", owner.ID)

	raw := "papel, tijeras"
	session, err := env.sessions.Create(ctx, workshop.ID, &CreateSessionRequest{Prompt: "Collage", Materials: &raw}, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	empty := ""
	updated, err := env.sessions.Update(ctx, session.ID, &UpdateSessionRequest{Materials: &empty}, owner.ID)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Materials != nil {
		t.Errorf("Materials after clear = %v, want nil", updated.Materials)
	}
}

func TestSessionService_NonOwnerSeesNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	other := env.repo.addUser("ignacio", models.RoleEditor)
	workshop := env.repo.addWorkshop("Pintura", owner.ID)
	session := env.repo.addSession("Acuarelas", workshop.ID)

	if _, err := env.sessions.GetByID(ctx, session.ID, other.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetByID as non-owner = %v, want ErrSessionNotFound", err)
	}
	if _, err := env.sessions.ListByWorkshop(ctx, workshop.ID, other.ID); !errors.Is(err, ErrWorkshopNotFound) {
		t.Errorf("ListByWorkshop as non-owner = %v, want ErrWorkshopNotFound", err)
	}
	if err := env.sessions.Delete(ctx, session.ID, other.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Delete as non-owner = %v, want ErrSessionNotFound", err)
	}
}
