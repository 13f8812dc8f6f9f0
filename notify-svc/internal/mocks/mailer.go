package mocks

import (
	"context"

	"opendfood/notify-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, email domain.Email) error {
	return m.Called(ctx, email).Error(0)
}
