package models

import "time"

// DefaultMemberRole is assigned when a member is added without a role.
const DefaultMemberRole = "member"

// ProjectMember links a contact to a project. The (ContactID, ProjectID)
// pair is the primary key, so a contact joins a project at most once.
type ProjectMember struct {
	ContactID ID        `gorm:"primaryKey;autoIncrement:false" json:"contactId"`
	ProjectID ID        `gorm:"primaryKey;autoIncrement:false" json:"projectId"`
	Role      string    `gorm:"not null;default:'member'" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joinedAt"`

	Contact *Contact        `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"contact,omitempty"`
	Project *ProjectSummary `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (ProjectMember) TableName() string { return "project_members" }

// MemberInput is the payload for adding a contact to a project.
type MemberInput struct {
	ContactID ID
	Role      string
}
