package recipient

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/features/client"
)

// Standard local@domain.tld shape. Stricter RFC parsing buys nothing
// here: the transport rejects anything exotic anyway.
var emailRx = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// FullVisibilityRole is the threshold at or above which principals see
// unmasked client addresses. Masking is display-only; delivery always
// uses the real addresses.
const FullVisibilityRole = common_models.RoleAnalyst

type ResolverService interface {
	Resolve(ctx context.Context, principal common_models.Principal, spec *Spec) (*Resolved, error)
}

type ResolverServiceImpl struct {
	clientRepo client.ClientRepository
}

func NewResolverService(clientRepo client.ClientRepository) ResolverService {
	return &ResolverServiceImpl{clientRepo: clientRepo}
}

// Resolve expands a recipient spec into flat, validated, deduplicated
// address lists. Any invalid address fails the whole operation.
func (s *ResolverServiceImpl) Resolve(ctx context.Context, principal common_models.Principal, spec *Spec) (*Resolved, error) {
	res := &Resolved{
		Groups: []Group{},
	}

	var to, cc, bcc []string

	for _, clientID := range spec.ClientIDs {
		cl, err := s.clientRepo.GetByClientID(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if cl == nil {
			return nil, fmt.Errorf("client %s not found", clientID)
		}
		if !cl.IsActive {
			return nil, fmt.Errorf("client %s is inactive", clientID)
		}

		to = append(to, cl.Emails...)
		cc = append(cc, cl.CcEmails...)
		bcc = append(bcc, cl.BccEmails...)

		res.Groups = append(res.Groups, Group{
			Type:   GroupClient,
			Label:  cl.Name,
			Emails: maskForDisplay(principal, cl.Emails),
		})
	}

	if len(spec.To) > 0 {
		to = append(to, spec.To...)
		res.Groups = append(res.Groups, Group{
			Type:   GroupCustom,
			Label:  "Custom recipients",
			Emails: normalizeAll(spec.To),
		})
	}
	cc = append(cc, spec.Cc...)
	bcc = append(bcc, spec.Bcc...)

	if len(spec.BulkEmails) > 0 {
		// Bulk lists are delivered privacy-preserving: every address
		// goes to bcc, never to a visible header.
		res.BulkMode = true
		bcc = append(bcc, spec.BulkEmails...)
		res.Groups = append(res.Groups, Group{
			Type:   GroupBulk,
			Label:  fmt.Sprintf("Bulk upload (%d addresses)", len(spec.BulkEmails)),
			Emails: maskForDisplay(principal, spec.BulkEmails),
		})
	}

	// Validate everything before accepting anything.
	var invalid []string
	for _, addr := range normalizeAll(append(append(append([]string{}, to...), cc...), bcc...)) {
		if !emailRx.MatchString(addr) {
			invalid = append(invalid, addr)
		}
	}
	if len(invalid) > 0 {
		return nil, &InvalidAddressError{Invalid: dedup(invalid)}
	}

	res.To = dedup(normalizeAll(to))
	seen := toSet(res.To)
	res.Cc = dedupAgainst(normalizeAll(cc), seen)
	for _, a := range res.Cc {
		seen[a] = struct{}{}
	}
	res.Bcc = dedupAgainst(normalizeAll(bcc), seen)

	if len(res.To) == 0 && !res.BulkMode {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	res.DisplayTo = maskForDisplay(principal, res.To)

	return res, nil
}

// IsValidAddress reports whether s matches the accepted address shape.
func IsValidAddress(s string) bool {
	return emailRx.MatchString(s)
}

// MaskEmail hides the local part, keeping the domain. Used for display
// to principals below the full-visibility threshold.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "*****"
	}
	return "*****" + email[at:]
}

func maskForDisplay(principal common_models.Principal, emails []string) []string {
	emails = normalizeAll(emails)
	if principal.Role.AtLeast(FullVisibilityRole) {
		return emails
	}
	out := make([]string, len(emails))
	for i, e := range emails {
		out[i] = MaskEmail(e)
	}
	return out
}

func normalizeAll(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// dedup preserves first-seen order; input is already lowercased.
func dedup(emails []string) []string {
	return dedupAgainst(emails, map[string]struct{}{})
}

func dedupAgainst(emails []string, seen map[string]struct{}) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func toSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		set[e] = struct{}{}
	}
	return set
}
