package access

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/entitlement-service/internal/entitlement"
	"github.com/magabrotheeeer/entitlement-service/internal/models"
)

type BetaMock struct{ mock.Mock }

func (m *BetaMock) GetStatus(ctx context.Context, userUID string) (models.BetaStatus, error) {
	args := m.Called(ctx, userUID)
	return args.Get(0).(models.BetaStatus), args.Error(1)
}

type SubscriptionMock struct{ mock.Mock }

func (m *SubscriptionMock) GetStatus(ctx context.Context, userUID string) (models.SubscriptionStatus, error) {
	args := m.Called(ctx, userUID)
	return args.Get(0).(models.SubscriptionStatus), args.Error(1)
}

type OwnershipMock struct{ mock.Mock }

func (m *OwnershipMock) Owns(ctx context.Context, userUID, productID string) (bool, error) {
	args := m.Called(ctx, userUID, productID)
	return args.Bool(0), args.Error(1)
}

type ProductsMock struct{ mock.Mock }

func (m *ProductsMock) IsSubscriptionIncluded(ctx context.Context, productID string) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func newService(beta *BetaMock, subs *SubscriptionMock, owns *OwnershipMock, products *ProductsMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(beta, subs, owns, products, entitlement.DefaultPolicy(), log)
}

func TestService_Check_UnauthenticatedSkipsStorage(t *testing.T) {
	beta := new(BetaMock)
	subs := new(SubscriptionMock)
	owns := new(OwnershipMock)
	products := new(ProductsMock)

	svc := newService(beta, subs, owns, products)

	v, err := svc.Check(context.Background(), nil,
		entitlement.Resource{Kind: entitlement.ResourceProduct, ProductID: "p1"})
	assert.NoError(t, err)
	assert.Equal(t, entitlement.DecisionRedirect, v.Decision)
	assert.Equal(t, entitlement.TargetLogin, v.Redirect)
	// Ни одного обращения к хранилищу
	owns.AssertNotCalled(t, "Owns", mock.Anything, mock.Anything, mock.Anything)
	subs.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
}

func TestService_Check_AdminAreaUsesOnlyRole(t *testing.T) {
	beta := new(BetaMock)
	subs := new(SubscriptionMock)
	owns := new(OwnershipMock)
	products := new(ProductsMock)

	svc := newService(beta, subs, owns, products)

	identity := &models.Identity{UID: "u3", Role: models.RoleAdmin}
	v, err := svc.Check(context.Background(), identity,
		entitlement.Resource{Kind: entitlement.ResourceAdminArea})
	assert.NoError(t, err)
	assert.True(t, v.Allowed())
	beta.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
}

func TestService_Check_BetaPortal(t *testing.T) {
	beta := new(BetaMock)
	beta.On("GetStatus", mock.Anything, "u1").Return(models.BetaApproved, nil)

	svc := newService(beta, new(SubscriptionMock), new(OwnershipMock), new(ProductsMock))

	identity := &models.Identity{UID: "u1", Role: models.RoleUser}
	v, err := svc.Check(context.Background(), identity,
		entitlement.Resource{Kind: entitlement.ResourceBetaPortal})
	assert.NoError(t, err)
	assert.True(t, v.Allowed())
}

func TestService_Check_ProductOwnedShortCircuits(t *testing.T) {
	// Владение решает без чтения подписки и каталога
	owns := new(OwnershipMock)
	owns.On("Owns", mock.Anything, "u1", "p1").Return(true, nil)
	subs := new(SubscriptionMock)
	products := new(ProductsMock)

	svc := newService(new(BetaMock), subs, owns, products)

	identity := &models.Identity{UID: "u1", Role: models.RoleUser}
	v, err := svc.Check(context.Background(), identity,
		entitlement.Resource{Kind: entitlement.ResourceProduct, ProductID: "p1"})
	assert.NoError(t, err)
	assert.True(t, v.Allowed())
	subs.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
	products.AssertNotCalled(t, "IsSubscriptionIncluded", mock.Anything, mock.Anything)
}

func TestService_Check_ProductViaSubscription(t *testing.T) {
	owns := new(OwnershipMock)
	owns.On("Owns", mock.Anything, "u1", "p1").Return(false, nil)
	subs := new(SubscriptionMock)
	subs.On("GetStatus", mock.Anything, "u1").Return(models.SubscriptionActive, nil)
	products := new(ProductsMock)
	products.On("IsSubscriptionIncluded", mock.Anything, "p1").Return(true, nil)

	svc := newService(new(BetaMock), subs, owns, products)

	identity := &models.Identity{UID: "u1", Role: models.RoleUser}
	v, err := svc.Check(context.Background(), identity,
		entitlement.Resource{Kind: entitlement.ResourceProduct, ProductID: "p1"})
	assert.NoError(t, err)
	assert.True(t, v.Allowed())
}

func TestService_Check_StoreErrorIsNotAVerdict(t *testing.T) {
	owns := new(OwnershipMock)
	owns.On("Owns", mock.Anything, "u1", "p1").Return(false, errors.New("db down"))

	svc := newService(new(BetaMock), new(SubscriptionMock), owns, new(ProductsMock))

	identity := &models.Identity{UID: "u1", Role: models.RoleUser}
	_, err := svc.Check(context.Background(), identity,
		entitlement.Resource{Kind: entitlement.ResourceProduct, ProductID: "p1"})
	assert.Error(t, err)
}
