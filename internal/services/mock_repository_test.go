package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
)

// mockRepository is an in-memory repositories.Repository used across the
// service tests. It mirrors the database constraints the services rely on:
// not-found errors, the invitation consume-once update and the composite
// unique index on observation versions.
type mockRepository struct {
	mu           sync.Mutex
	users        map[uint]*models.User
	roles        map[string]*models.Role
	invitations  map[uint]*models.UserInvitation
	workshops    map[uint]*models.Workshop
	participants map[uint]*models.Participant
	sessions     map[uint]*models.Session
	observations map[uint]*models.ObservationalRecord
	nextID       uint

	// forceVersionConflict makes the next observation insert fail with a
	// duplicate key error regardless of contents.
	forceVersionConflict int
}

func newMockRepository() *mockRepository {
	m := &mockRepository{
		users:        make(map[uint]*models.User),
		roles:        make(map[string]*models.Role),
		invitations:  make(map[uint]*models.UserInvitation),
		workshops:    make(map[uint]*models.Workshop),
		participants: make(map[uint]*models.Participant),
		sessions:     make(map[uint]*models.Session),
		observations: make(map[uint]*models.ObservationalRecord),
	}
	m.roles[models.RoleAdmin] = &models.Role{ID: 1, Name: models.RoleAdmin}
	m.roles[models.RoleEditor] = &models.Role{ID: 2, Name: models.RoleEditor}
	return m
}

func (m *mockRepository) id() uint {
	m.nextID++
	return m.nextID + 10 // role IDs are below
}

// ===== seeding helpers =====

func (m *mockRepository) addUser(username string, roleNames ...string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &models.User{
		ID:            m.id(),
		Username:      username,
		Email:         username + "@example.com",
		Active:        true,
		EmailVerified: true,
	}
	for _, name := range roleNames {
		user.Roles = append(user.Roles, *m.roles[name])
	}
	m.users[user.ID] = user
	return user
}

func (m *mockRepository) addWorkshop(name string, ownerID uint) *models.Workshop {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := &models.Workshop{ID: m.id(), Name: name, OwnerID: ownerID}
	m.workshops[w.ID] = w
	return w
}

func (m *mockRepository) addParticipant(name string, workshopID uint) *models.Participant {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &models.Participant{ID: m.id(), Name: name, WorkshopID: workshopID}
	m.participants[p.ID] = p
	return p
}

func (m *mockRepository) addSession(prompt string, workshopID uint) *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &models.Session{ID: m.id(), Prompt: prompt, WorkshopID: workshopID}
	m.sessions[s.ID] = s
	return s
}

func (m *mockRepository) addInvitation(email string, createdBy uint, ttl time.Duration) *models.UserInvitation {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := models.NewUserInvitation(email, createdBy, ttl)
	inv.ID = m.id()
	m.invitations[inv.ID] = inv
	return inv
}

// ===== Repository =====

func (m *mockRepository) User() repositories.UserRepository               { return &mockUserRepo{m} }
func (m *mockRepository) Role() repositories.RoleRepository               { return &mockRoleRepo{m} }
func (m *mockRepository) Invitation() repositories.InvitationRepository   { return &mockInvitationRepo{m} }
func (m *mockRepository) Workshop() repositories.WorkshopRepository       { return &mockWorkshopRepo{m} }
func (m *mockRepository) Participant() repositories.ParticipantRepository { return &mockParticipantRepo{m} }
func (m *mockRepository) Session() repositories.SessionRepository         { return &mockSessionRepo{m} }
func (m *mockRepository) Observation() repositories.ObservationRepository { return &mockObservationRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== users =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user.ID = r.m.id()
	r.m.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if u, ok := r.m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByUsernameOrEmail(ctx context.Context, tx *gorm.DB, identifier string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByVerificationToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.users, id)
	return nil
}

func (r *mockUserRepo) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockUserRepo) AssignRole(ctx context.Context, tx *gorm.DB, user *models.User, role *models.Role) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user.Roles = append(user.Roles, *role)
	return nil
}

// ===== roles =====

type mockRoleRepo struct{ m *mockRepository }

func (r *mockRoleRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Role, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if role, ok := r.m.roles[name]; ok {
		return role, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockRoleRepo) EnsureDefaults(ctx context.Context, tx *gorm.DB) error { return nil }

// ===== invitations =====

type mockInvitationRepo struct{ m *mockRepository }

func (r *mockInvitationRepo) Create(ctx context.Context, tx *gorm.DB, invitation *models.UserInvitation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	invitation.ID = r.m.id()
	r.m.invitations[invitation.ID] = invitation
	return nil
}

func (r *mockInvitationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserInvitation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if inv, ok := r.m.invitations[id]; ok {
		return inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockInvitationRepo) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.UserInvitation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, inv := range r.m.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockInvitationRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.InvitationFilters) ([]*models.UserInvitation, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.UserInvitation
	for _, inv := range r.m.invitations {
		if filters.Email != nil && inv.Email != *filters.Email {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockInvitationRepo) HasPendingForEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, inv := range r.m.invitations {
		if inv.Email == email && inv.IsValid() {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockInvitationRepo) ConsumeByToken(ctx context.Context, tx *gorm.DB, token string, usedAt time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, inv := range r.m.invitations {
		if inv.Token == token && inv.UsedAt == nil {
			inv.UsedAt = &usedAt
			return true, nil
		}
	}
	return false, nil
}

func (r *mockInvitationRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.invitations, id)
	return nil
}

// ===== workshops =====

type mockWorkshopRepo struct{ m *mockRepository }

func (r *mockWorkshopRepo) Create(ctx context.Context, tx *gorm.DB, workshop *models.Workshop) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	workshop.ID = r.m.id()
	r.m.workshops[workshop.ID] = workshop
	return nil
}

func (r *mockWorkshopRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Workshop, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if w, ok := r.m.workshops[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockWorkshopRepo) GetByIDWithRelations(ctx context.Context, tx *gorm.DB, id uint) (*models.Workshop, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	w, ok := r.m.workshops[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := *w
	loaded.Participants = nil
	loaded.Sessions = nil
	for _, p := range r.m.participants {
		if p.WorkshopID == id {
			loaded.Participants = append(loaded.Participants, *p)
		}
	}
	for _, s := range r.m.sessions {
		if s.WorkshopID == id {
			loaded.Sessions = append(loaded.Sessions, *s)
		}
	}
	return &loaded, nil
}

func (r *mockWorkshopRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.WorkshopFilters) ([]*models.Workshop, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Workshop
	for _, w := range r.m.workshops {
		if filters.OwnerID != nil && w.OwnerID != *filters.OwnerID {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockWorkshopRepo) Update(ctx context.Context, tx *gorm.DB, workshop *models.Workshop) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.workshops[workshop.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.workshops[workshop.ID] = workshop
	return nil
}

// Delete cascades the way the database foreign keys do.
func (r *mockWorkshopRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.workshops[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.workshops, id)
	for pid, p := range r.m.participants {
		if p.WorkshopID == id {
			delete(r.m.participants, pid)
		}
	}
	for sid, s := range r.m.sessions {
		if s.WorkshopID != id {
			continue
		}
		delete(r.m.sessions, sid)
		for oid, o := range r.m.observations {
			if o.SessionID == sid {
				delete(r.m.observations, oid)
			}
		}
	}
	return nil
}

func (r *mockWorkshopRepo) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.WorkshopStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.workshops[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	stats := &repositories.WorkshopStats{}
	sessionIDs := make(map[uint]bool)
	for _, p := range r.m.participants {
		if p.WorkshopID == id {
			stats.ParticipantCount++
		}
	}
	for _, s := range r.m.sessions {
		if s.WorkshopID == id {
			stats.SessionCount++
			sessionIDs[s.ID] = true
		}
	}
	for _, o := range r.m.observations {
		if sessionIDs[o.SessionID] {
			stats.ObservationCount++
		}
	}
	return stats, nil
}

// ===== participants =====

type mockParticipantRepo struct{ m *mockRepository }

func (r *mockParticipantRepo) Create(ctx context.Context, tx *gorm.DB, participant *models.Participant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	participant.ID = r.m.id()
	r.m.participants[participant.ID] = participant
	return nil
}

func (r *mockParticipantRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p, ok := r.m.participants[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockParticipantRepo) ListByWorkshop(ctx context.Context, tx *gorm.DB, workshopID uint) ([]*models.Participant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Participant
	for _, p := range r.m.participants {
		if p.WorkshopID == workshopID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockParticipantRepo) Update(ctx context.Context, tx *gorm.DB, participant *models.Participant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.participants[participant.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.participants[participant.ID] = participant
	return nil
}

func (r *mockParticipantRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.participants[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.participants, id)
	for oid, o := range r.m.observations {
		if o.ParticipantID == id {
			delete(r.m.observations, oid)
		}
	}
	return nil
}

// ===== sessions =====

type mockSessionRepo struct{ m *mockRepository }

func (r *mockSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	session.ID = r.m.id()
	r.m.sessions[session.ID] = session
	return nil
}

func (r *mockSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s, ok := r.m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockSessionRepo) ListByWorkshop(ctx context.Context, tx *gorm.DB, workshopID uint) ([]*models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Session
	for _, s := range r.m.sessions {
		if s.WorkshopID == workshopID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.sessions[session.ID] = session
	return nil
}

func (r *mockSessionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.sessions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.sessions, id)
	for oid, o := range r.m.observations {
		if o.SessionID == id {
			delete(r.m.observations, oid)
		}
	}
	return nil
}

// ===== observations =====

type mockObservationRepo struct{ m *mockRepository }

func (r *mockObservationRepo) Create(ctx context.Context, tx *gorm.DB, record *models.ObservationalRecord) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.forceVersionConflict > 0 {
		r.m.forceVersionConflict--
		return gorm.ErrDuplicatedKey
	}
	for _, o := range r.m.observations {
		if o.SessionID == record.SessionID && o.ParticipantID == record.ParticipantID && o.Version == record.Version {
			return gorm.ErrDuplicatedKey
		}
	}
	record.ID = r.m.id()
	record.CreatedAt = time.Now()
	r.m.observations[record.ID] = record
	return nil
}

func (r *mockObservationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ObservationalRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if o, ok := r.m.observations[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockObservationRepo) GetLatest(ctx context.Context, tx *gorm.DB, sessionID, participantID uint) (*models.ObservationalRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var latest *models.ObservationalRecord
	for _, o := range r.m.observations {
		if o.SessionID != sessionID || o.ParticipantID != participantID {
			continue
		}
		if latest == nil || o.Version > latest.Version {
			latest = o
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *mockObservationRepo) ListBySessionParticipant(ctx context.Context, tx *gorm.DB, sessionID, participantID uint) ([]*models.ObservationalRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.ObservationalRecord
	for _, o := range r.m.observations {
		if o.SessionID == sessionID && o.ParticipantID == participantID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r *mockObservationRepo) ListByWorkshop(ctx context.Context, tx *gorm.DB, workshopID uint) ([]*models.ObservationalRecord, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sessionIDs := make(map[uint]bool)
	for _, s := range r.m.sessions {
		if s.WorkshopID == workshopID {
			sessionIDs[s.ID] = true
		}
	}
	var out []*models.ObservationalRecord
	for _, o := range r.m.observations {
		if sessionIDs[o.SessionID] {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockObservationRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.observations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.observations, id)
	return nil
}
