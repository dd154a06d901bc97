package types

import "time"

// Contact represents a person in the address book. Contacts are owned by the
// CRUD subsystem; the graph core only reads them. Gender feeds reverse
// relationship type resolution and Company feeds the professional company
// grouping; both are optional.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Gender    Gender    `json:"gender,omitempty"`
	Company   string    `json:"company,omitempty"`
	JobTitle  string    `json:"job_title,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactDirectory is an id-keyed lookup of contacts, the shape the graph
// builder and layout engines consume.
type ContactDirectory map[string]*Contact

// DirectoryFromList builds a ContactDirectory from a contact slice.
// Contacts with empty IDs are skipped.
func DirectoryFromList(contacts []*Contact) ContactDirectory {
	dir := make(ContactDirectory, len(contacts))
	for _, c := range contacts {
		if c == nil || c.ID == "" {
			continue
		}
		dir[c.ID] = c
	}
	return dir
}
