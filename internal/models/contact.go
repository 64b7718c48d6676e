package models

import "time"

// Contact is a person that can be assigned tasks and join projects.
type Contact struct {
	ID        ID        `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"not null" json:"firstName"`
	LastName  string    `gorm:"not null" json:"lastName"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Contact) TableName() string { return "contacts" }

// ContactSummary is the reduced contact projection embedded in task listings.
type ContactSummary struct {
	ID        ID     `gorm:"primaryKey" json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (ContactSummary) TableName() string { return "contacts" }

// ContactPatch holds a partial contact update. Nil fields are left untouched.
type ContactPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// Changes returns the column assignments for the patch. updated_at is always
// included so an empty patch still touches (and therefore locates) the row.
func (p ContactPatch) Changes() map[string]any {
	changes := map[string]any{"updated_at": time.Now().UTC()}
	if p.FirstName != nil {
		changes["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		changes["last_name"] = *p.LastName
	}
	if p.Email != nil {
		changes["email"] = *p.Email
	}
	return changes
}
