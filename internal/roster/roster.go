package roster

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"voiceguard/internal/domain"
)

const (
	// MaxSOS is the number of SOS contact slots.
	MaxSOS = 1
	// MaxNormal is the number of normal contact slots.
	MaxNormal = 3
)

var (
	ErrCapacityExceeded = errors.New("contact slot is full")
	ErrInvalidInput     = errors.New("contact name and phone are required")
)

// Roster holds the contact slots in insertion order.
type Roster struct {
	contacts []domain.Contact
	newID    func() string
}

// New builds a roster from a stored snapshot. Contacts beyond the slot
// limits are dropped and returned so callers can report them.
func New(contacts []domain.Contact) (*Roster, []domain.Contact) {
	r := &Roster{newID: uuid.NewString}
	var dropped []domain.Contact
	for _, c := range contacts {
		if r.full(c.Type) || !validType(c.Type) {
			dropped = append(dropped, c)
			continue
		}
		r.contacts = append(r.contacts, c)
	}
	return r, dropped
}

// Add appends a contact to the requested slot.
func (r *Roster) Add(kind domain.ContactType, name string, phone string) (domain.Contact, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" || !validType(kind) {
		return domain.Contact{}, ErrInvalidInput
	}
	if r.full(kind) {
		return domain.Contact{}, ErrCapacityExceeded
	}

	contact := domain.Contact{ID: r.newID(), Name: name, Phone: phone, Type: kind}
	r.contacts = append(r.contacts, contact)
	return contact, nil
}

// Remove deletes the contact with id. Unknown ids are ignored.
func (r *Roster) Remove(id string) bool {
	before := len(r.contacts)
	r.contacts = lo.Reject(r.contacts, func(c domain.Contact, _ int) bool {
		return c.ID == id
	})
	return len(r.contacts) != before
}

// SOS returns the SOS contact when one is set.
func (r *Roster) SOS() (domain.Contact, bool) {
	return lo.Find(r.contacts, func(c domain.Contact) bool {
		return c.Type == domain.ContactTypeSOS
	})
}

// Normals returns the normal contacts in insertion order.
func (r *Roster) Normals() []domain.Contact {
	return lo.Filter(r.contacts, func(c domain.Contact, _ int) bool {
		return c.Type == domain.ContactTypeNormal
	})
}

// Contacts returns a copy of every contact in insertion order.
func (r *Roster) Contacts() []domain.Contact {
	out := make([]domain.Contact, len(r.contacts))
	copy(out, r.contacts)
	return out
}

func (r *Roster) full(kind domain.ContactType) bool {
	count := lo.CountBy(r.contacts, func(c domain.Contact) bool {
		return c.Type == kind
	})
	switch kind {
	case domain.ContactTypeSOS:
		return count >= MaxSOS
	case domain.ContactTypeNormal:
		return count >= MaxNormal
	default:
		return false
	}
}

func validType(kind domain.ContactType) bool {
	return kind == domain.ContactTypeSOS || kind == domain.ContactTypeNormal
}

// ParseType accepts the short CLI spellings as well as the stored values.
func ParseType(value string) (domain.ContactType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sos", strings.ToLower(string(domain.ContactTypeSOS)):
		return domain.ContactTypeSOS, nil
	case "normal", "circle", strings.ToLower(string(domain.ContactTypeNormal)):
		return domain.ContactTypeNormal, nil
	default:
		return "", ErrInvalidInput
	}
}
