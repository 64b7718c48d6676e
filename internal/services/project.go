package services

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/internal/logger"
	"taskhub/internal/models"
	"taskhub/internal/store"
)

const msgAlreadyMember = "Contact is already a member of this project"

type ProjectService struct {
	base
}

func NewProjectService(db *gorm.DB, baseLog *logger.Logger) *ProjectService {
	return &ProjectService{base: newBase(db, baseLog, "ProjectService")}
}

func membersByJoinTime(db *gorm.DB) *gorm.DB {
	return db.Order("joined_at ASC, contact_id ASC")
}

func tasksByCreation(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// enriched loads members (with their contact) and tasks alongside each project.
func (s *ProjectService) enriched(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Members", membersByJoinTime).
		Preload("Members.Contact").
		Preload("Tasks", tasksByCreation)
}

func withCounts(p *models.Project) {
	p.TaskCount = len(p.Tasks)
	p.MemberCount = len(p.Members)
}

// FindAll lists projects newest first.
func (s *ProjectService) FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	q := s.enriched(ctx)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	projects := []models.Project{}
	if err := q.Order("created_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, s.fail("find projects", err)
	}
	for i := range projects {
		withCounts(&projects[i])
	}
	return projects, nil
}

func (s *ProjectService) FindByID(ctx context.Context, id models.ID) (*models.Project, error) {
	var project models.Project
	err := s.enriched(ctx).Take(&project, "id = ?", id).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("find project", err)
	}
	withCounts(&project)
	return &project, nil
}

func (s *ProjectService) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error; err != nil {
		return nil, s.fail("create project", err)
	}
	return s.FindByID(ctx, project.ID)
}

func (s *ProjectService) Update(ctx context.Context, id models.ID, patch models.ProjectPatch) (*models.Project, error) {
	res := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(patch.Changes())
	if err := store.RequireRows(res); err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, s.fail("update project", err)
	}
	return s.FindByID(ctx, id)
}

// Remove deletes the project together with its tasks and memberships in a
// single transaction. It reports false when the project does not exist.
func (s *ProjectService) Remove(ctx context.Context, id models.ID) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return store.RequireRows(tx.Where("id = ?", id).Delete(&models.Project{}))
	})
	if err != nil {
		if store.IsNotFound(err) {
			return false, nil
		}
		return false, s.fail("delete project", err)
	}
	return true, nil
}

// AddMember links a contact to the project. Role defaults to "member".
func (s *ProjectService) AddMember(ctx context.Context, projectID models.ID, in models.MemberInput) (*models.ProjectMember, error) {
	role := in.Role
	if role == "" {
		role = models.DefaultMemberRole
	}

	member := &models.ProjectMember{ProjectID: projectID, ContactID: in.ContactID, Role: role}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error; err != nil {
		return nil, s.conflict("add member", err, msgAlreadyMember)
	}

	var out models.ProjectMember
	err := s.db.WithContext(ctx).Preload("Contact").
		Take(&out, "project_id = ? AND contact_id = ?", projectID, in.ContactID).Error
	if err != nil {
		return nil, s.fail("load member", err)
	}
	return &out, nil
}

// GetMembers lists a project's members with their contact, earliest first.
func (s *ProjectService) GetMembers(ctx context.Context, projectID models.ID) ([]models.ProjectMember, error) {
	members := []models.ProjectMember{}
	err := membersByJoinTime(s.db.WithContext(ctx).Preload("Contact")).
		Where("project_id = ?", projectID).
		Find(&members).Error
	if err != nil {
		return nil, s.fail("find members", err)
	}
	return members, nil
}

// RemoveMember reports whether the membership existed.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, contactID models.ID) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("project_id = ? AND contact_id = ?", projectID, contactID).
		Delete(&models.ProjectMember{})
	if err := store.RequireRows(res); err != nil {
		if store.IsNotFound(err) {
			return false, nil
		}
		return false, s.fail("remove member", err)
	}
	return true, nil
}

// GetProjectStats counts the project's tasks and members and groups the
// tasks by status. It returns nil when the project does not exist.
func (s *ProjectService) GetProjectStats(ctx context.Context, projectID models.ID) (*models.ProjectStats, error) {
	var project models.Project
	err := s.db.WithContext(ctx).
		Select("id").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Select("id", "project_id", "status") }).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Select("contact_id", "project_id") }).
		Take(&project, "id = ?", projectID).Error
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, s.fail("project stats", err)
	}

	stats := &models.ProjectStats{
		TotalTasks:    len(project.Tasks),
		TotalMembers:  len(project.Members),
		TasksByStatus: make(map[string]int),
	}
	for _, t := range project.Tasks {
		stats.TasksByStatus[string(t.Status)]++
	}
	return stats, nil
}
