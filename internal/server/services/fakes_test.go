package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/staffgate/internal/common"
	"github.com/dmitrijs2005/staffgate/internal/dbx"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/otps"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/roles"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func strPtr(s string) *string { return &s }

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

// --- users ---

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	getErr  error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = int64(len(f.byEmail) + 1)
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- roles ---

type fakeRolesRepo struct {
	roles  map[int64]*models.Role
	getErr error
}

func (f *fakeRolesRepo) GetRoleByID(ctx context.Context, id int64) (*models.Role, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.roles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

// --- otps: consume is atomic under mu, like the conditional UPDATE ---

type fakeOtpsRepo struct {
	mu        sync.Mutex
	rows      []*models.OtpVerification
	createErr error
	opErr     error
}

func (f *fakeOtpsRepo) Create(ctx context.Context, otp *models.OtpVerification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *otp
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeOtpsRepo) Consume(ctx context.Context, email, code string, now time.Time) error {
	if f.opErr != nil {
		return f.opErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Email == email && r.Code == code && !r.IsUsed && r.ExpiresAt.After(now) {
			r.IsUsed = true
			return nil
		}
	}
	return common.ErrOtpNotFoundOrExpired
}

func (f *fakeOtpsRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if f.opErr != nil {
		return 0, f.opErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	var n int64
	for _, r := range f.rows {
		if r.ExpiresAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeOtpsRepo) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r.ID)
	}
	return out
}

// --- sessions ---

type fakeSessionsRepo struct {
	mu        sync.Mutex
	rows      map[string]models.Session
	createErr error
	findErr   error
	deleteErr error
}

func newFakeSessions() *fakeSessionsRepo {
	return &fakeSessionsRepo{rows: map[string]models.Session{}}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *models.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s.CreatedAt = time.Now()
	f.rows[s.ID] = *s
	return nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, id string) (*models.Session, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeSessionsRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRolesRepo
	o *fakeOtpsRepo
	s *fakeSessionsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.u }
func (m *fakeRepoManager) Roles(db dbx.DBTX) roles.Repository          { return m.r }
func (m *fakeRepoManager) Otps(db dbx.DBTX) otps.Repository            { return m.o }
func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessions.Repository    { return m.s }

// --- directory ---

type fakeGateway struct {
	lookup models.EmployeeLookup
	calls  []string
}

func (g *fakeGateway) GetEmployeeByNumber(ctx context.Context, no string) models.EmployeeLookup {
	g.calls = append(g.calls, no)
	return g.lookup
}
