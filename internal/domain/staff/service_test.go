package staff

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
	"github.com/primehealth/hms/internal/platform/blobstore"
	"github.com/primehealth/hms/internal/platform/notification"
)

type mockRepo struct {
	users  map[uuid.UUID]*User
	resets map[uuid.UUID]resetEntry
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:  make(map[uuid.UUID]*User),
		resets: make(map[uuid.UUID]resetEntry),
	}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (m *mockRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *mockRepo) ListByTenant(_ context.Context, tenantID string, role auth.Role) ([]*User, error) {
	var out []*User
	for _, u := range m.users {
		if u.TenantID != tenantID {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) CountByTenantRole(_ context.Context, tenantID string, role auth.Role) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.TenantID == tenantID && u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Name, error) {
	out := make(map[uuid.UUID]Name)
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = Name{FirstName: u.FirstName, LastName: u.LastName}
		}
	}
	return out, nil
}

type resetEntry struct {
	token   string
	expires time.Time
}

func (m *mockRepo) SetResetToken(_ context.Context, id uuid.UUID, token string, expires time.Time) error {
	m.resets[id] = resetEntry{token: token, expires: expires}
	return nil
}

func (m *mockRepo) GetByResetToken(_ context.Context, token string) (*User, error) {
	for id, e := range m.resets {
		if e.token == token && e.expires.After(time.Now()) {
			return m.GetByID(context.Background(), id)
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (m *mockRepo) ClearResetToken(_ context.Context, id uuid.UUID) error {
	delete(m.resets, id)
	return nil
}

func newTestService(repo *mockRepo) (*Service, *notification.MockEmailSender) {
	sender := &notification.MockEmailSender{}
	mailer := notification.NewMailer(sender, notification.NewTemplateEngine(), zerolog.Nop())
	svc := NewService(repo, blobstore.NewInMemoryImageStore(), mailer,
		[]byte("test-secret"), time.Hour, zerolog.Nop())
	return svc, sender
}

func seedUser(t *testing.T, repo *mockRepo, email, password string, role auth.Role, tenantID, status string) *User {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &User{
		ID:        uuid.New(),
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  hashed,
		Role:      role,
		TenantID:  tenantID,
		Status:    status,
	}
	repo.users[u.ID] = u
	return u
}

func TestLogin(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "doc@x.example", "pass123", auth.RoleDoctor, "t1", StatusActive)
	svc, _ := newTestService(repo)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "doc@x.example", Password: "pass123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Error("expected session token")
	}
	claims, err := auth.ParseToken([]byte("test-secret"), result.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.TenantID != "t1" || claims.Role != auth.RoleDoctor {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "doc@x.example", "pass123", auth.RoleDoctor, "t1", StatusActive)
	svc, _ := newTestService(repo)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "doc@x.example", Password: "nope"})
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestLogin_UnknownEmailSameMessage(t *testing.T) {
	svc, _ := newTestService(newMockRepo())
	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@x.example", Password: "x"})
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("unknown email must not be distinguishable: %v", err)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "doc@x.example", "pass123", auth.RoleDoctor, "t1", StatusInactive)
	svc, _ := newTestService(repo)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "doc@x.example", Password: "pass123"})
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden for inactive account, got %v", err)
	}
}

func TestCreateStaff(t *testing.T) {
	repo := newMockRepo()
	svc, sender := newTestService(repo)
	actor := &auth.Identity{ID: uuid.New(), Role: auth.RoleHospitalAdmin, TenantID: "t1"}

	u, tempPassword, err := svc.CreateStaff(context.Background(), actor, CreateUserRequest{
		FirstName:  "Meera",
		LastName:   "Nair",
		Email:      "Meera@X.Example",
		Role:       auth.RoleNurse,
		Department: "ICU",
	}, nil, "", "")
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	if u.TenantID != "t1" {
		t.Errorf("tenant = %q, want actor's tenant", u.TenantID)
	}
	if u.Email != "meera@x.example" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Status != StatusActive {
		t.Errorf("status = %q", u.Status)
	}
	if tempPassword == "" || u.Password == tempPassword {
		t.Error("temp password must be returned and stored hashed")
	}
	if !auth.CheckPassword(u.Password, tempPassword) {
		t.Error("stored hash must match the temp password")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(sender.Calls()) == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	calls := sender.Calls()
	if len(calls) != 1 || calls[0].To != "meera@x.example" {
		t.Errorf("expected welcome email to new staff, got %+v", calls)
	}
}

func TestCreateStaff_DuplicateEmail(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "meera@x.example", "x", auth.RoleNurse, "t1", StatusActive)
	svc, _ := newTestService(repo)
	actor := &auth.Identity{Role: auth.RoleHospitalAdmin, TenantID: "t1"}

	_, _, err := svc.CreateStaff(context.Background(), actor, CreateUserRequest{
		FirstName: "Meera", LastName: "Nair", Email: "meera@x.example", Role: auth.RoleNurse,
	}, nil, "", "")
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestCreateStaff_ImageFailureDoesNotFailCreation(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo)
	actor := &auth.Identity{Role: auth.RoleHospitalAdmin, TenantID: "t1"}

	u, _, err := svc.CreateStaff(context.Background(), actor, CreateUserRequest{
		FirstName: "Meera", LastName: "Nair", Email: "m2@x.example", Role: auth.RoleNurse,
	}, strings.NewReader("not-an-image"), "cv.exe", "application/octet-stream")
	if err != nil {
		t.Fatalf("CreateStaff must survive image rejection: %v", err)
	}
	if u.ProfilePicture != "" {
		t.Error("rejected image must not be referenced")
	}
}

func TestUpdateStaff(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@x.example", "old-pass", auth.RoleDoctor, "t1", StatusActive)
	svc, _ := newTestService(repo)
	actor := &auth.Identity{Role: auth.RoleHospitalAdmin, TenantID: "t1"}

	newRole := auth.RoleNurse
	newStatus := StatusInactive
	newPassword := "new-pass"
	updated, err := svc.UpdateStaff(context.Background(), actor, u.ID, UpdateUserRequest{
		Role:     &newRole,
		Status:   &newStatus,
		Password: &newPassword,
	})
	if err != nil {
		t.Fatalf("UpdateStaff: %v", err)
	}
	if updated.Role != auth.RoleNurse || updated.Status != StatusInactive {
		t.Errorf("update not applied: %+v", updated)
	}
	if !auth.CheckPassword(updated.Password, "new-pass") {
		t.Error("changed password must be rehashed")
	}
}

func TestUpdateStaff_CrossTenantIsNotFound(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@x.example", "x", auth.RoleDoctor, "t1", StatusActive)
	svc, _ := newTestService(repo)
	actor := &auth.Identity{Role: auth.RoleHospitalAdmin, TenantID: "t2"}

	name := "Eve"
	_, err := svc.UpdateStaff(context.Background(), actor, u.ID, UpdateUserRequest{FirstName: &name})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("cross-tenant update must report NotFound, got %v", err)
	}
}

func TestUpdatePhoto_FailureFailsOperation(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@x.example", "x", auth.RoleDoctor, "t1", StatusActive)
	svc, _ := newTestService(repo)
	actor := &auth.Identity{Role: auth.RoleHospitalAdmin, TenantID: "t1"}

	_, err := svc.UpdatePhoto(context.Background(), actor, u.ID,
		strings.NewReader("x"), "a.bin", "application/octet-stream")
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("photo endpoint must fail hard on upload rejection, got %v", err)
	}
	if repo.users[u.ID].ProfilePicture != "" {
		t.Error("user must not reference a failed upload")
	}
}

func TestForgotPassword_ClearsTokenOnEmailFailure(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@x.example", "x", auth.RoleDoctor, "t1", StatusActive)
	svc, sender := newTestService(repo)
	sender.ShouldFail = true

	err := svc.ForgotPassword(context.Background(), "doc@x.example")
	if apperr.KindOf(err) != apperr.Internal {
		t.Fatalf("expected Internal when reset mail fails, got %v", err)
	}
	if _, ok := repo.resets[u.ID]; ok {
		t.Error("reset token must be cleared when the email fails")
	}
}

func TestPasswordResetRoundTrip(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@x.example", "old-pass", auth.RoleDoctor, "t1", StatusActive)
	svc, sender := newTestService(repo)

	if err := svc.ForgotPassword(context.Background(), "doc@x.example"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token := repo.resets[u.ID].token
	if token == "" {
		t.Fatal("expected issued token")
	}
	calls := sender.Calls()
	if len(calls) != 1 || !strings.Contains(calls[0].Body, token) {
		t.Fatal("reset email must carry the token")
	}

	if err := svc.ResetPassword(context.Background(), token, "brand-new"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if !auth.CheckPassword(repo.users[u.ID].Password, "brand-new") {
		t.Error("new password not stored")
	}
	if err := svc.ResetPassword(context.Background(), token, "again"); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("consumed token must be invalid, got %v", err)
	}
}

func TestLoadIdentity_InactiveRejected(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@x.example", "x", auth.RoleDoctor, "t1", StatusInactive)
	svc, _ := newTestService(repo)

	_, err := svc.LoadIdentity(context.Background(), u.ID)
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Fatalf("inactive account must not resolve, got %v", err)
	}
}

func TestDisplayNames(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@x.example", "x", auth.RoleDoctor, "t1", StatusActive)
	svc, _ := newTestService(repo)

	names, err := svc.DisplayNames(context.Background(), []uuid.UUID{u.ID, uuid.New()})
	if err != nil {
		t.Fatalf("DisplayNames: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("expected only known ids resolved, got %d", len(names))
	}
	if names[u.ID].FirstName != "Test" {
		t.Errorf("name = %+v", names[u.ID])
	}
}
