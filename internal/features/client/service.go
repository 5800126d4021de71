package client

import (
	"context"
	"fmt"
	"strings"
)

type ClientService interface {
	CreateClient(ctx context.Context, client *Client) error
	GetClient(ctx context.Context, id string) (*Client, error)
	ListClients(ctx context.Context, activeOnly bool) ([]Client, error)
	UpdateClient(ctx context.Context, client *Client) error
	DeleteClient(ctx context.Context, id string) error
}

type ClientServiceImpl struct {
	repo ClientRepository
}

func NewClientService(repo ClientRepository) ClientService {
	return &ClientServiceImpl{repo: repo}
}

func (s *ClientServiceImpl) CreateClient(ctx context.Context, client *Client) error {
	if client.ClientID == "" || client.Name == "" {
		return fmt.Errorf("client_id and name are required")
	}
	if len(client.Emails) == 0 {
		return fmt.Errorf("at least one email is required")
	}

	existing, err := s.repo.GetByClientID(ctx, client.ClientID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("client %s already exists", client.ClientID)
	}

	normalizeAddressLists(client)
	return s.repo.Create(ctx, client)
}

func (s *ClientServiceImpl) GetClient(ctx context.Context, id string) (*Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ClientServiceImpl) ListClients(ctx context.Context, activeOnly bool) ([]Client, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *ClientServiceImpl) UpdateClient(ctx context.Context, client *Client) error {
	if len(client.Emails) == 0 {
		return fmt.Errorf("at least one email is required")
	}
	normalizeAddressLists(client)
	return s.repo.Update(ctx, client)
}

func (s *ClientServiceImpl) DeleteClient(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Stored addresses are lowercased and trimmed, matching the resolver's
// case-insensitive dedup.
func normalizeAddressLists(client *Client) {
	client.Emails = normalize(client.Emails)
	client.CcEmails = normalize(client.CcEmails)
	client.BccEmails = normalize(client.BccEmails)
}

func normalize(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
