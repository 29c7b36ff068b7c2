package domain

import "time"

const (
	ContactTypePersonal     = "personal"
	ContactTypeProfessional = "professional"
)

// Contact is a single address-book entry. OwnerID is set at creation and never changes.
type Contact struct {
	ID        string
	OwnerID   int64
	Name      string
	Email     string
	Phone     string
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactPatch carries a partial update. A nil field means "leave unchanged";
// a pointer to the empty string means "clear the field".
type ContactPatch struct {
	Name  *string
	Email *string
	Phone *string
	Type  *string
}

// Apply copies the provided fields onto c.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
}
