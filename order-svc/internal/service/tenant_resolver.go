package service

import (
	"context"
	"errors"
	"net"
	"strings"

	"opendfood/order-svc/internal/domain"
)

// TenantResolver maps a request host to an active restaurant. There is no
// default tenant: anything that does not resolve is ErrTenantNotFound.
type TenantResolver struct {
	repo       TenantRepository
	rootDomain string
	excluded   map[string]bool
}

func NewTenantResolver(repo TenantRepository, rootDomain string, excluded []string) *TenantResolver {
	ex := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		ex[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &TenantResolver{
		repo:       repo,
		rootDomain: strings.Trim(strings.ToLower(rootDomain), "."),
		excluded:   ex,
	}
}

func (r *TenantResolver) SubdomainFromHost(host string) (string, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", false
	}

	var candidate string
	if r.rootDomain != "" {
		suffix := "." + r.rootDomain
		if !strings.HasSuffix(host, suffix) {
			return "", false
		}
		rest := strings.TrimSuffix(host, suffix)
		candidate = strings.Split(rest, ".")[0]
	} else {
		parts := strings.Split(host, ".")
		need := 3
		switch {
		case strings.HasSuffix(host, ".localhost") || host == "localhost":
			need = 2
		case strings.HasSuffix(host, ".127.0.0.1") || host == "127.0.0.1":
			need = 5
		}
		if len(parts) < need {
			return "", false
		}
		candidate = parts[0]
	}

	if candidate == "" || r.excluded[candidate] {
		return "", false
	}
	return candidate, true
}

func (r *TenantResolver) Resolve(ctx context.Context, host string) (*domain.Restaurant, error) {
	sub, ok := r.SubdomainFromHost(host)
	if !ok {
		return nil, domain.ErrTenantNotFound
	}

	rest, err := r.repo.GetActiveRestaurantBySubdomain(ctx, sub)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return rest, nil
}
