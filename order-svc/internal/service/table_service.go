package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"opendfood/logger"
	"opendfood/order-svc/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TableService struct {
	repo  TableRepository
	qr    QRGenerator
	links Links
}

func NewTableService(repo TableRepository, qr QRGenerator, links Links) *TableService {
	return &TableService{repo: repo, qr: qr, links: links}
}

// ResolveTable maps a customer token to an active table of tenant. A token
// of another tenant is reported exactly like an unknown one.
func (s *TableService) ResolveTable(ctx context.Context, tenant *domain.Restaurant, token string) (*domain.Table, error) {
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	id, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, domain.ErrTableNotFound
	}

	table, err := s.repo.GetTableByToken(ctx, tenant.ID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	if !table.IsActive {
		return nil, domain.ErrTableInactive
	}
	return table, nil
}

func (s *TableService) Get(ctx context.Context, tenant *domain.Restaurant, tableID int) (*domain.Table, error) {
	table, err := s.repo.GetTable(ctx, tenant.ID, tableID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrTableNotFound
	}
	return table, err
}

// Create generates the table token once and renders its QR code.
func (s *TableService) Create(ctx context.Context, tenant *domain.Restaurant, t *domain.Table) error {
	t.Number = strings.TrimSpace(t.Number)
	if t.Number == "" {
		return fmt.Errorf("%w: number is required", domain.ErrInvalidInput)
	}
	if t.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", domain.ErrInvalidInput)
	}
	t.RestaurantID = tenant.ID
	t.Token = uuid.New()
	t.IsActive = true

	if err := s.repo.CreateTable(ctx, t); err != nil {
		return err
	}
	if _, err := s.render(ctx, tenant, t); err != nil {
		logger.FromContext(ctx).Warn("table qr code not saved", zap.Int("table_id", t.ID), zap.Error(err))
	}
	return nil
}

func (s *TableService) render(ctx context.Context, tenant *domain.Restaurant, t *domain.Table) ([]byte, error) {
	if s.qr == nil {
		return nil, errors.New("no qr generator configured")
	}
	qr, err := s.qr.Encode(s.links.Table(tenant.Subdomain, t.Token))
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveTableQR(ctx, t.ID, qr); err != nil {
		return nil, err
	}
	return qr, nil
}

func (s *TableService) List(ctx context.Context, tenant *domain.Restaurant) ([]domain.Table, error) {
	return s.repo.ListTables(ctx, tenant.ID)
}

func (s *TableService) SetActive(ctx context.Context, tenant *domain.Restaurant, tableID int, active bool) error {
	rows, err := s.repo.SetTableActive(ctx, tenant.ID, tableID, active)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTableNotFound
	}
	return nil
}

// RegenerateQR renders the code again for the same token. The token itself
// never changes.
func (s *TableService) RegenerateQR(ctx context.Context, tenant *domain.Restaurant, tableID int) ([]byte, error) {
	table, err := s.Get(ctx, tenant, tableID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, tenant, table)
}

func (s *TableService) QRCode(ctx context.Context, tenant *domain.Restaurant, tableID int) ([]byte, error) {
	qr, err := s.repo.GetTableQR(ctx, tenant.ID, tableID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(qr) == 0 {
		return s.RegenerateQR(ctx, tenant, tableID)
	}
	return qr, nil
}

func (s *TableService) Delete(ctx context.Context, tenant *domain.Restaurant, tableID int) error {
	rows, err := s.repo.DeleteTable(ctx, tenant.ID, tableID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTableNotFound
	}
	return nil
}
