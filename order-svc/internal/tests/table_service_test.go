package tests

import (
	"strings"
	"testing"

	"opendfood/order-svc/internal/domain"
	"opendfood/order-svc/internal/mocks"
	"opendfood/order-svc/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func tableFixture() (*service.TableService, *mocks.TableRepository, *mocks.QRGenerator) {
	repo := new(mocks.TableRepository)
	qr := new(mocks.QRGenerator)
	return service.NewTableService(repo, qr, service.Links{Scheme: "https", Base: "opendfood.com"}), repo, qr
}

func TestTableService_Create(t *testing.T) {
	tenant := &domain.Restaurant{ID: 1, Subdomain: "bistro"}

	t.Run("token generated and qr saved", func(t *testing.T) {
		svc, repo, qr := tableFixture()
		repo.On("CreateTable", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Table).ID = 9
		}).Return(nil).Once()
		qr.On("Encode", mock.MatchedBy(func(url string) bool {
			return strings.HasPrefix(url, "https://bistro.opendfood.com/t/")
		})).Return([]byte("png"), nil).Once()
		repo.On("SaveTableQR", mock.Anything, 9, []byte("png")).Return(nil).Once()

		table := &domain.Table{Number: " A1 ", Capacity: 4}
		require.NoError(t, svc.Create(ctx, tenant, table))

		assert.Equal(t, "A1", table.Number)
		assert.Equal(t, 1, table.RestaurantID)
		assert.True(t, table.IsActive)
		assert.NotEqual(t, uuid.Nil, table.Token)
		repo.AssertExpectations(t)
		qr.AssertExpectations(t)
	})

	t.Run("invalid input writes nothing", func(t *testing.T) {
		svc, repo, _ := tableFixture()
		assert.ErrorIs(t, svc.Create(ctx, tenant, &domain.Table{Number: "", Capacity: 2}), domain.ErrInvalidInput)
		assert.ErrorIs(t, svc.Create(ctx, tenant, &domain.Table{Number: "B2", Capacity: 0}), domain.ErrInvalidInput)
		repo.AssertNotCalled(t, "CreateTable", mock.Anything, mock.Anything)
	})

	t.Run("qr failure keeps the table", func(t *testing.T) {
		svc, repo, qr := tableFixture()
		repo.On("CreateTable", mock.Anything, mock.Anything).Return(nil).Once()
		qr.On("Encode", mock.Anything).Return(nil, assert.AnError).Once()

		assert.NoError(t, svc.Create(ctx, tenant, &domain.Table{Number: "C3", Capacity: 2}))
		repo.AssertNotCalled(t, "SaveTableQR", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTableService_QRCode(t *testing.T) {
	tenant := &domain.Restaurant{ID: 1, Subdomain: "bistro"}
	token := uuid.MustParse("6f1c2a52-3b7e-4d5e-9a0f-2f4c9b1d7e11")

	t.Run("stored code returned", func(t *testing.T) {
		svc, repo, qr := tableFixture()
		repo.On("GetTableQR", mock.Anything, 1, 3).Return([]byte("stored"), nil).Once()

		png, err := svc.QRCode(ctx, tenant, 3)
		require.NoError(t, err)
		assert.Equal(t, []byte("stored"), png)
		qr.AssertNotCalled(t, "Encode", mock.Anything)
	})

	t.Run("missing code rendered for the same token", func(t *testing.T) {
		svc, repo, qr := tableFixture()
		repo.On("GetTableQR", mock.Anything, 1, 3).Return(nil, nil).Once()
		repo.On("GetTable", mock.Anything, 1, 3).Return(&domain.Table{ID: 3, RestaurantID: 1, Token: token}, nil).Once()
		qr.On("Encode", "https://bistro.opendfood.com/t/"+token.String()).Return([]byte("fresh"), nil).Once()
		repo.On("SaveTableQR", mock.Anything, 3, []byte("fresh")).Return(nil).Once()

		png, err := svc.QRCode(ctx, tenant, 3)
		require.NoError(t, err)
		assert.Equal(t, []byte("fresh"), png)
		repo.AssertExpectations(t)
	})

	t.Run("other tenant's table", func(t *testing.T) {
		svc, repo, _ := tableFixture()
		repo.On("GetTableQR", mock.Anything, 1, 77).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.QRCode(ctx, tenant, 77)
		assert.ErrorIs(t, err, domain.ErrTableNotFound)
	})
}

func TestTableService_SetActiveAndDelete(t *testing.T) {
	tenant := &domain.Restaurant{ID: 1}
	svc, repo, _ := tableFixture()

	repo.On("SetTableActive", mock.Anything, 1, 3, false).Return(int64(1), nil).Once()
	repo.On("SetTableActive", mock.Anything, 1, 4, false).Return(int64(0), nil).Once()
	repo.On("DeleteTable", mock.Anything, 1, 3).Return(int64(1), nil).Once()
	repo.On("DeleteTable", mock.Anything, 1, 4).Return(int64(0), nil).Once()

	assert.NoError(t, svc.SetActive(ctx, tenant, 3, false))
	assert.ErrorIs(t, svc.SetActive(ctx, tenant, 4, false), domain.ErrTableNotFound)
	assert.NoError(t, svc.Delete(ctx, tenant, 3))
	assert.ErrorIs(t, svc.Delete(ctx, tenant, 4), domain.ErrTableNotFound)
	repo.AssertExpectations(t)
}
