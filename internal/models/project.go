package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// ProjectStatuses lists every accepted project status.
var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Project groups tasks and the contacts working on them.
type Project struct {
	ID          ID            `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"not null" json:"name"`
	Description *string       `json:"description"`
	Status      ProjectStatus `gorm:"not null;default:'active'" json:"status"`
	StartDate   *time.Time    `json:"startDate"`
	EndDate     *time.Time    `json:"endDate"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Members and Tasks are populated by the project service on every read.
	Members []ProjectMember `gorm:"foreignKey:ProjectID;-:migration" json:"members"`
	Tasks   []Task          `gorm:"foreignKey:ProjectID;-:migration" json:"tasks"`

	TaskCount   int `gorm:"-" json:"taskCount"`
	MemberCount int `gorm:"-" json:"memberCount"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeSave(tx *gorm.DB) error {
	p.StartDate = utcPtr(p.StartDate)
	p.EndDate = utcPtr(p.EndDate)
	return nil
}

// ProjectSummary is the reduced project projection embedded in task listings.
type ProjectSummary struct {
	ID     ID            `gorm:"primaryKey" json:"id"`
	Name   string        `json:"name"`
	Status ProjectStatus `json:"status"`
}

func (ProjectSummary) TableName() string { return "projects" }

// ProjectPatch holds a partial project update.
type ProjectPatch struct {
	Name        *string
	Description Nullable[string]
	Status      *ProjectStatus
	StartDate   Nullable[time.Time]
	EndDate     Nullable[time.Time]
}

func (p ProjectPatch) Changes() map[string]any {
	changes := map[string]any{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	putNullable(changes, "description", p.Description)
	if p.Status != nil {
		changes["status"] = *p.Status
	}
	putNullable(changes, "start_date", utcTime(p.StartDate))
	putNullable(changes, "end_date", utcTime(p.EndDate))
	return changes
}

// ProjectFilter restricts a project listing. Zero fields impose no constraint.
type ProjectFilter struct {
	Status ProjectStatus
}

// ProjectStats aggregates a project's tasks and members.
type ProjectStats struct {
	TotalTasks    int            `json:"totalTasks"`
	TotalMembers  int            `json:"totalMembers"`
	TasksByStatus map[string]int `json:"tasksByStatus"`
}
