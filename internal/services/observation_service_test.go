package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/arteterapia/workshop-service/internal/events"
	"github.com/arteterapia/workshop-service/internal/flow"
	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/validator"
)

const testFlowTTL = 2 * time.Hour

type testEnv struct {
	repo        *mockRepository
	mr          *miniredis.Miniredis
	publisher   *events.MockEventPublisher
	workshops   WorkshopService
	observation ObservationService
	sessions    SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	v := validator.New()
	repo := newMockRepository()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	flowStore := flow.NewStore(client, testFlowTTL)

	publisher := events.NewMockEventPublisher(logger)
	notifier := NewNotificationEventService(publisher, logger)

	workshops := NewWorkshopService(repo, nil, logger, v)
	return &testEnv{
		repo:        repo,
		mr:          mr,
		publisher:   publisher,
		workshops:   workshops,
		observation: NewObservationService(repo, workshops, flowStore, nil, logger, v, notifier),
		sessions:    NewSessionService(repo, workshops, nil, logger, v),
	}
}

// answerAll walks the whole catalog answering every question with the given value.
func answerAll(t *testing.T, env *testEnv, flowID string, userID uint, answer string) {
	t.Helper()
	ctx := context.Background()
	for _, q := range models.AllQuestions() {
		step, err := env.observation.SubmitAnswer(ctx, flowID, &SubmitAnswerRequest{QuestionID: q.ID, Answer: answer}, userID)
		if err != nil {
			t.Fatalf("SubmitAnswer(%s) failed: %v", q.ID, err)
		}
		if step.Completed && q.ID != models.AllQuestions()[len(models.AllQuestions())-1].ID {
			t.Fatalf("flow completed early at %s", q.ID)
		}
	}
}

func TestObservationFlow_FirstVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Pintura grupal", owner.ID)
	session := env.repo.addSession("Autorretrato", workshop.ID)
	participant := env.repo.addParticipant("Lucía", workshop.ID)

	step, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, owner.ID)
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}
	if step.IsRedo {
		t.Error("first observation should not be a redo")
	}
	if step.QuestionIndex != 0 {
		t.Errorf("QuestionIndex = %d, want 0", step.QuestionIndex)
	}
	if step.TotalQuestions != models.TotalQuestionCount() {
		t.Errorf("TotalQuestions = %d, want %d", step.TotalQuestions, models.TotalQuestionCount())
	}
	if step.Question == nil || step.Question.ID != models.AllQuestions()[0].ID {
		t.Errorf("unexpected first question: %+v", step.Question)
	}

	answerAll(t, env, step.FlowID, owner.ID, string(models.AnswerYes))

	notes := "muy participativa"
	record, err := env.observation.Complete(ctx, step.FlowID, &CompleteObservationRequest{FreeformNotes: &notes}, owner.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if record.Version != 1 {
		t.Errorf("Version = %d, want 1", record.Version)
	}
	if got := record.GetAnswer("entry_on_time"); got != string(models.AnswerYes) {
		t.Errorf("answer entry_on_time = %q, want yes", got)
	}
	if record.FreeformNotes == nil || *record.FreeformNotes != notes {
		t.Error("freeform notes not persisted")
	}

	// the flow is gone once saved
	if _, err := env.observation.GetFlow(ctx, step.FlowID, owner.ID); !errors.Is(err, ErrFlowExpired) {
		t.Errorf("GetFlow after complete = %v, want ErrFlowExpired", err)
	}

	published := env.publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Topic != events.TopicObservationSaved {
		t.Errorf("published events = %+v, want one observation.saved", published)
	}
}

func TestObservationFlow_RedoPrefillsAndIncrementsVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Arcilla", owner.ID)
	session := env.repo.addSession("Modelado libre", workshop.ID)
	participant := env.repo.addParticipant("Julián", workshop.ID)

	// version 1, everything answered yes
	step, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, owner.ID)
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}
	answerAll(t, env, step.FlowID, owner.ID, string(models.AnswerYes))
	first, err := env.observation.Complete(ctx, step.FlowID, &CompleteObservationRequest{}, owner.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// redo starts pre-filled from version 1
	redo, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, owner.ID)
	if err != nil {
		t.Fatalf("redo StartFlow failed: %v", err)
	}
	if !redo.IsRedo {
		t.Error("expected redo flow")
	}
	if redo.PreviousVersion != 1 {
		t.Errorf("PreviousVersion = %d, want 1", redo.PreviousVersion)
	}
	if redo.PrefilledAnswer != string(models.AnswerYes) {
		t.Errorf("PrefilledAnswer = %q, want yes", redo.PrefilledAnswer)
	}

	answerAll(t, env, redo.FlowID, owner.ID, string(models.AnswerNo))
	second, err := env.observation.Complete(ctx, redo.FlowID, &CompleteObservationRequest{}, owner.ID)
	if err != nil {
		t.Fatalf("redo Complete failed: %v", err)
	}
	if second.Version != 2 {
		t.Errorf("redo Version = %d, want 2", second.Version)
	}

	// version 1 stays untouched
	v1, err := env.observation.GetByID(ctx, first.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetByID(v1) failed: %v", err)
	}
	if got := v1.GetAnswer("entry_on_time"); got != string(models.AnswerYes) {
		t.Errorf("v1 answer mutated: %q", got)
	}

	history, err := env.observation.History(ctx, session.ID, participant.ID, owner.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if history.Total != 2 {
		t.Fatalf("history Total = %d, want 2", history.Total)
	}
	if history.Observations[0].Version != 2 || history.Observations[1].Version != 1 {
		t.Errorf("history not newest-first: %d, %d", history.Observations[0].Version, history.Observations[1].Version)
	}
}

func TestObservationHistory_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Grabado", owner.ID)
	session := env.repo.addSession("Linóleo", workshop.ID)
	participant := env.repo.addParticipant("Olivia", workshop.ID)

	for i := 0; i < 3; i++ {
		step, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, owner.ID)
		if err != nil {
			t.Fatalf("StartFlow %d failed: %v", i+1, err)
		}
		answerAll(t, env, step.FlowID, owner.ID, string(models.AnswerYes))
		if _, err := env.observation.Complete(ctx, step.FlowID, &CompleteObservationRequest{}, owner.ID); err != nil {
			t.Fatalf("Complete %d failed: %v", i+1, err)
		}
	}

	history, err := env.observation.History(ctx, session.ID, participant.ID, owner.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if history.Total != 3 {
		t.Fatalf("history Total = %d, want 3", history.Total)
	}
	for i, want := range []int{3, 2, 1} {
		if got := history.Observations[i].Version; got != want {
			t.Errorf("history[%d].Version = %d, want %d", i, got, want)
		}
	}
}

func TestObservationFlow_VersionConflictRetriesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Collage", owner.ID)
	session := env.repo.addSession("Recortes", workshop.ID)
	participant := env.repo.addParticipant("Emma", workshop.ID)

	step, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, owner.ID)
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}
	answerAll(t, env, step.FlowID, owner.ID, string(models.AnswerYes))

	// one collision: the retry recomputes the version and succeeds
	env.repo.forceVersionConflict = 1
	record, err := env.observation.Complete(ctx, step.FlowID, &CompleteObservationRequest{}, owner.ID)
	if err != nil {
		t.Fatalf("Complete with one conflict failed: %v", err)
	}
	if record.Version != 1 {
		t.Errorf("Version = %d, want 1", record.Version)
	}

	// two collisions in a row: give up
	step2, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, owner.ID)
	if err != nil {
		t.Fatalf("second StartFlow failed: %v", err)
	}
	answerAll(t, env, step2.FlowID, owner.ID, string(models.AnswerYes))
	env.repo.forceVersionConflict = 2
	if _, err := env.observation.Complete(ctx, step2.FlowID, &CompleteObservationRequest{}, owner.ID); !errors.Is(err, ErrObservationConflict) {
		t.Errorf("Complete with repeated conflicts = %v, want ErrObservationConflict", err)
	}
}

func TestObservationFlow_AccessControl(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	other := env.repo.addUser("ignacio", models.RoleEditor)
	admin := env.repo.addUser("root", models.RoleAdmin)
	workshop := env.repo.addWorkshop("Pintura", owner.ID)
	session := env.repo.addSession("Acuarelas", workshop.ID)
	participant := env.repo.addParticipant("Lucía", workshop.ID)

	req := &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}

	// a stranger's session reads as missing, not forbidden
	if _, err := env.observation.StartFlow(ctx, req, other.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("StartFlow as non-owner = %v, want ErrSessionNotFound", err)
	}

	// admins can observe anywhere
	step, err := env.observation.StartFlow(ctx, req, admin.ID)
	if err != nil {
		t.Fatalf("StartFlow as admin failed: %v", err)
	}

	// someone else's flow ID reads as expired
	if _, err := env.observation.GetFlow(ctx, step.FlowID, other.ID); !errors.Is(err, ErrFlowExpired) {
		t.Errorf("GetFlow of foreign flow = %v, want ErrFlowExpired", err)
	}
}

func TestObservationFlow_AnswerValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Pintura", owner.ID)
	session := env.repo.addSession("Témperas", workshop.ID)
	participant := env.repo.addParticipant("Bruno", workshop.ID)

	step, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, owner.ID)
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}

	// question IDs outside the catalog are rejected
	if _, err := env.observation.SubmitAnswer(ctx, step.FlowID, &SubmitAnswerRequest{QuestionID: "no_such_question", Answer: "yes"}, owner.ID); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("unknown question = %v, want ErrUnknownQuestion", err)
	}

	// answers outside the vocabulary are rejected by validation
	firstQuestion := models.AllQuestions()[0]
	if _, err := env.observation.SubmitAnswer(ctx, step.FlowID, &SubmitAnswerRequest{QuestionID: firstQuestion.ID, Answer: "maybe"}, owner.ID); err == nil {
		t.Error("invalid answer value accepted")
	}
}

func TestObservationFlow_PartialSave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Pintura", owner.ID)
	session := env.repo.addSession("Acuarelas", workshop.ID)
	participant := env.repo.addParticipant("Irene", workshop.ID)

	step, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, owner.ID)
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}

	// answer only the first question and save
	firstQuestion := models.AllQuestions()[0]
	if _, err := env.observation.SubmitAnswer(ctx, step.FlowID, &SubmitAnswerRequest{QuestionID: firstQuestion.ID, Answer: "no"}, owner.ID); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	saved, err := env.observation.Complete(ctx, step.FlowID, &CompleteObservationRequest{}, owner.ID)
	if err != nil {
		t.Fatalf("Complete of partial flow failed: %v", err)
	}
	if saved.Version != 1 {
		t.Errorf("Version = %d, want 1", saved.Version)
	}
	if got := saved.GetAnswer(firstQuestion.ID); got != "no" {
		t.Errorf("answer = %q, want %q", got, "no")
	}
	if len(saved.Answers) != 1 {
		t.Errorf("answer count = %d, want 1", len(saved.Answers))
	}
}

func TestObservationFlow_ExpiresWithTTL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshop := env.repo.addWorkshop("Pintura", owner.ID)
	session := env.repo.addSession("Esculturas", workshop.ID)
	participant := env.repo.addParticipant("Vera", workshop.ID)

	step, err := env.observation.StartFlow(ctx, &StartObservationRequest{SessionID: session.ID, ParticipantID: participant.ID}, owner.ID)
	if err != nil {
		t.Fatalf("StartFlow failed: %v", err)
	}

	env.mr.FastForward(testFlowTTL + time.Minute)

	if _, err := env.observation.GetFlow(ctx, step.FlowID, owner.ID); !errors.Is(err, ErrFlowExpired) {
		t.Errorf("GetFlow after TTL = %v, want ErrFlowExpired", err)
	}
}

func TestObservationFlow_ParticipantMustShareWorkshop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.repo.addUser("tamara", models.RoleEditor)
	workshopA := env.repo.addWorkshop("Taller A", owner.ID)
	workshopB := env.repo.addWorkshop("Taller B", owner.ID)
	session := env.repo.addSession("Sesión A", workshopA.ID)
	stranger := env.repo.addParticipant("De otro taller", workshopB.ID)

	req := &StartObservationRequest{SessionID: session.ID, ParticipantID: stranger.ID}
	if _, err := env.observation.StartFlow(ctx, req, owner.ID); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("cross-workshop StartFlow = %v, want ErrParticipantNotFound", err)
	}
}
