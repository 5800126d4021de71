package recipient

import (
	"context"
	"errors"
	"reflect"
	"testing"

	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/features/client"
)

type fakeClientRepo struct {
	clients map[string]*client.Client
}

func (f *fakeClientRepo) Create(ctx context.Context, c *client.Client) error { return nil }
func (f *fakeClientRepo) GetByID(ctx context.Context, id string) (*client.Client, error) {
	return nil, nil
}
func (f *fakeClientRepo) GetByClientID(ctx context.Context, clientID string) (*client.Client, error) {
	return f.clients[clientID], nil
}
func (f *fakeClientRepo) List(ctx context.Context, activeOnly bool) ([]client.Client, error) {
	return nil, nil
}
func (f *fakeClientRepo) Update(ctx context.Context, c *client.Client) error { return nil }
func (f *fakeClientRepo) Delete(ctx context.Context, id string) error        { return nil }

func newTestResolver(clients ...*client.Client) ResolverService {
	repo := &fakeClientRepo{clients: map[string]*client.Client{}}
	for _, c := range clients {
		repo.clients[c.ClientID] = c
	}
	return NewResolverService(repo)
}

var analyst = common_models.Principal{UserID: "u1", Role: common_models.RoleAnalyst}
var viewer = common_models.Principal{UserID: "u2", Role: common_models.RoleViewer}

func TestResolveDeduplicatesCaseInsensitive(t *testing.T) {
	svc := newTestResolver()

	res, err := svc.Resolve(context.Background(), analyst, &Spec{
		To: []string{"a@x.com", "A@X.com", " a@x.com "},
		Cc: []string{"a@x.com", "b@x.com"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if !reflect.DeepEqual(res.To, []string{"a@x.com"}) {
		t.Errorf("To = %v, want [a@x.com]", res.To)
	}
	// a@x.com already lives in To, so cc keeps only b@x.com.
	if !reflect.DeepEqual(res.Cc, []string{"b@x.com"}) {
		t.Errorf("Cc = %v, want [b@x.com]", res.Cc)
	}
}

func TestResolveExpandsClients(t *testing.T) {
	svc := newTestResolver(&client.Client{
		ClientID: "acme",
		Name:     "Acme Bank",
		Emails:   []string{"soc@acme.example"},
		CcEmails: []string{"ops@acme.example"},
		IsActive: true,
	})

	res, err := svc.Resolve(context.Background(), analyst, &Spec{
		ClientIDs: []string{"acme"},
		To:        []string{"extra@x.com"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if !reflect.DeepEqual(res.To, []string{"soc@acme.example", "extra@x.com"}) {
		t.Errorf("To = %v", res.To)
	}
	if !reflect.DeepEqual(res.Cc, []string{"ops@acme.example"}) {
		t.Errorf("Cc = %v", res.Cc)
	}
	if len(res.Groups) != 2 {
		t.Fatalf("Groups = %d, want 2", len(res.Groups))
	}
	if res.Groups[0].Type != GroupClient || res.Groups[0].Label != "Acme Bank" {
		t.Errorf("client group = %+v", res.Groups[0])
	}
}

func TestResolveUnknownOrInactiveClient(t *testing.T) {
	svc := newTestResolver(&client.Client{
		ClientID: "dormant",
		Emails:   []string{"x@y.example"},
		IsActive: false,
	})

	if _, err := svc.Resolve(context.Background(), analyst, &Spec{ClientIDs: []string{"nope"}}); err == nil {
		t.Error("expected error for unknown client")
	}
	if _, err := svc.Resolve(context.Background(), analyst, &Spec{ClientIDs: []string{"dormant"}}); err == nil {
		t.Error("expected error for inactive client")
	}
}

func TestResolveInvalidAddressesAreAtomic(t *testing.T) {
	svc := newTestResolver()

	_, err := svc.Resolve(context.Background(), analyst, &Spec{
		To: []string{"good@x.com", "not-an-email"},
		Cc: []string{"also bad"},
	})

	var invalidErr *InvalidAddressError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidAddressError, got %v", err)
	}
	if len(invalidErr.Invalid) != 2 {
		t.Errorf("Invalid = %v, want both bad addresses", invalidErr.Invalid)
	}
}

func TestResolveBulkGoesToBcc(t *testing.T) {
	svc := newTestResolver()

	res, err := svc.Resolve(context.Background(), analyst, &Spec{
		BulkEmails: []string{"one@x.com", "two@x.com", "one@x.com"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if !res.BulkMode {
		t.Error("BulkMode = false, want true")
	}
	if len(res.To) != 0 {
		t.Errorf("To = %v, want empty in bulk mode", res.To)
	}
	if !reflect.DeepEqual(res.Bcc, []string{"one@x.com", "two@x.com"}) {
		t.Errorf("Bcc = %v", res.Bcc)
	}
}

func TestResolveMaskingIsDisplayOnly(t *testing.T) {
	svc := newTestResolver(&client.Client{
		ClientID: "acme",
		Name:     "Acme",
		Emails:   []string{"soc@acme.example"},
		IsActive: true,
	})

	res, err := svc.Resolve(context.Background(), viewer, &Spec{ClientIDs: []string{"acme"}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	// Delivery lists keep the real address.
	if !reflect.DeepEqual(res.To, []string{"soc@acme.example"}) {
		t.Errorf("To = %v, delivery addresses must never be masked", res.To)
	}
	// Display strings are masked for a viewer.
	if !reflect.DeepEqual(res.DisplayTo, []string{"*****@acme.example"}) {
		t.Errorf("DisplayTo = %v", res.DisplayTo)
	}
	if !reflect.DeepEqual(res.Groups[0].Emails, []string{"*****@acme.example"}) {
		t.Errorf("group emails = %v", res.Groups[0].Emails)
	}

	// An analyst sees everything.
	res, err = svc.Resolve(context.Background(), analyst, &Spec{ClientIDs: []string{"acme"}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !reflect.DeepEqual(res.DisplayTo, []string{"soc@acme.example"}) {
		t.Errorf("DisplayTo = %v, analyst should see real addresses", res.DisplayTo)
	}
}

func TestResolveRequiresRecipients(t *testing.T) {
	svc := newTestResolver()
	if _, err := svc.Resolve(context.Background(), analyst, &Spec{Cc: []string{"c@x.com"}}); err == nil {
		t.Error("expected error when To is empty and not bulk")
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user@example.com", "*****@example.com"},
		{"a@b.co", "*****@b.co"},
		{"no-at-sign", "*****"},
	}
	for _, tt := range tests {
		if got := MaskEmail(tt.in); got != tt.want {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
