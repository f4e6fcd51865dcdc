package service

import (
	"context"
	"testing"

	"civic-portal/internal/domain"
	"civic-portal/internal/repository"
	"civic-portal/internal/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRequestFixture(t *testing.T) (*RequestService, repository.UsersRepo) {
	t.Helper()
	users := repository.NewMemoryUsersRepo()
	return NewRequestService(repository.NewMemoryRequestsRepo(users), zap.NewNop()), users
}

func seedUser(t *testing.T, users repository.UsersRepo, name, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, Role: domain.RoleCitizen, Department: domain.DefaultDepartment}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func complaintInput(title string) CreateInput {
	return CreateInput{
		Kind:        domain.KindComplaint,
		Title:       title,
		Category:    "roads",
		Description: "pothole near the market junction",
	}
}

func TestCreateForcesPendingStatus(t *testing.T) {
	svc, users := newRequestFixture(t)
	owner := seedUser(t, users, "Asha", "asha@example.com")

	req, err := svc.Create(context.Background(), Actor{UserID: owner.ID}, complaintInput("Pothole"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, req.Status)
	assert.Equal(t, owner.ID, req.UserID)
	assert.NotNil(t, req.Attachments, "attachments should serialize as an empty array")
	assert.NotEmpty(t, req.ID)
}

func TestCreateValidatesPerKind(t *testing.T) {
	svc, users := newRequestFixture(t)
	owner := seedUser(t, users, "Asha", "asha@example.com")
	actor := Actor{UserID: owner.ID}

	in := complaintInput("")
	_, err := svc.Create(context.Background(), actor, in)
	assert.ErrorIs(t, err, xerrors.ErrMissingFields)

	_, err = svc.Create(context.Background(), actor, CreateInput{
		Kind:        domain.KindService,
		Category:    "water",
		Description: "new connection",
		// no address
	})
	assert.ErrorIs(t, err, xerrors.ErrMissingFields)

	_, err = svc.Create(context.Background(), actor, CreateInput{
		Kind:        domain.KindService,
		Category:    "water",
		Description: "new connection",
		Location:    domain.Location{Address: "14 Lake Road"},
	})
	assert.NoError(t, err)
}

func TestListScopesCitizensToOwnRecords(t *testing.T) {
	svc, users := newRequestFixture(t)
	alice := seedUser(t, users, "Alice", "alice@example.com")
	bob := seedUser(t, users, "Bob", "bob@example.com")

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, Actor{UserID: alice.ID}, complaintInput("Alice complaint"))
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, Actor{UserID: bob.ID}, complaintInput("Bob complaint"))
	require.NoError(t, err)

	page, err := svc.List(ctx, Actor{UserID: alice.ID}, ListParams{Kind: domain.KindComplaint})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	for _, item := range page.Items {
		assert.Equal(t, alice.ID, item.UserID)
	}

	page, err = svc.List(ctx, Actor{UserID: "staff-1", IsStaff: true}, ListParams{Kind: domain.KindComplaint})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestListPagination(t *testing.T) {
	svc, users := newRequestFixture(t)
	owner := seedUser(t, users, "Asha", "asha@example.com")
	actor := Actor{UserID: owner.ID}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, actor, complaintInput("Complaint"))
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, actor, ListParams{Kind: domain.KindComplaint, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(ctx, actor, ListParams{Kind: domain.KindComplaint, Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestGetByIDRoundTrip(t *testing.T) {
	svc, users := newRequestFixture(t)
	owner := seedUser(t, users, "Asha", "asha@example.com")

	ctx := context.Background()
	in := complaintInput("Pothole on Main St")
	created, err := svc.Create(ctx, Actor{UserID: owner.ID}, in)
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, domain.KindComplaint, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Category, got.Category)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, domain.StatusPending, got.Status)
	require.NotNil(t, got.Owner)
	assert.Equal(t, owner.ID, got.Owner.ID)
	assert.Equal(t, "Asha", got.Owner.Name)
	assert.Equal(t, "asha@example.com", got.Owner.Email)

	_, err = svc.GetByID(ctx, domain.KindComplaint, "missing-id")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	// A complaint id is invisible through the service-request routes.
	_, err = svc.GetByID(ctx, domain.KindService, created.ID)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestUpdateStatusNormalizesAndKeepsRemark(t *testing.T) {
	svc, users := newRequestFixture(t)
	owner := seedUser(t, users, "Asha", "asha@example.com")

	ctx := context.Background()
	req, err := svc.Create(ctx, Actor{UserID: owner.ID}, complaintInput("Pothole"))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, domain.KindComplaint, req.ID, "IN-PROGRESS", "crew dispatched")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	require.NotNil(t, updated.Remark)
	assert.Equal(t, "crew dispatched", *updated.Remark)

	// Empty remark leaves the stored one untouched.
	updated, err = svc.UpdateStatus(ctx, domain.KindComplaint, req.ID, "completed", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	require.NotNil(t, updated.Remark)
	assert.Equal(t, "crew dispatched", *updated.Remark)
}

func TestUpdateStatusErrors(t *testing.T) {
	svc, users := newRequestFixture(t)
	owner := seedUser(t, users, "Asha", "asha@example.com")

	ctx := context.Background()
	req, err := svc.Create(ctx, Actor{UserID: owner.ID}, complaintInput("Pothole"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, domain.KindComplaint, req.ID, "done", "")
	assert.ErrorIs(t, err, xerrors.ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, domain.KindComplaint, "missing-id", "completed", "")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	// A service-kind id is invisible through the complaint routes.
	srv, err := svc.Create(ctx, Actor{UserID: owner.ID}, CreateInput{
		Kind:        domain.KindService,
		Category:    "water",
		Description: "new connection",
		Location:    domain.Location{Address: "14 Lake Road"},
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, domain.KindComplaint, srv.ID, "completed", "")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
