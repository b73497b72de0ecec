// Package service implements the group mutation operations. Each operation
// is self-contained: read the current document, apply a pure transformation
// through the normalizer, write back through the store adapter. Nothing is
// cached between operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jmhart/crewlog/internal/metrics"
	"github.com/jmhart/crewlog/internal/models"
	"github.com/jmhart/crewlog/internal/storage"
)

const (
	// maxWriteAttempts bounds the re-read/re-apply loop on version
	// conflicts.
	maxWriteAttempts = 3

	// maxCodeAttempts bounds invite-code regeneration on collision.
	maxCodeAttempts = 5
)

// GroupService runs the group mutations against the store adapter.
type GroupService struct {
	groups *storage.Groups
}

// NewGroupService creates a service backed by the given group adapter.
func NewGroupService(groups *storage.Groups) *GroupService {
	return &GroupService{groups: groups}
}

// CreateGroupRequest carries the caller-supplied fields for Create.
type CreateGroupRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	BannerDataURL string   `json:"bannerDataUrl"`
	Invited       []string `json:"invited"`
}

// LogRequest carries the caller-supplied fields for AppendWorkLog. Exactly
// one of TaskID (log against an existing task) or TaskName (create a new
// task) drives task resolution. Hours and Minutes are summed.
type LogRequest struct {
	TaskID       string `json:"taskId"`
	TaskName     string `json:"taskName"`
	Hours        int    `json:"hours"`
	Minutes      int    `json:"minutes"`
	Stars        int    `json:"stars"`
	PhotoDataURL string `json:"photoDataUrl"`
	Description  string `json:"description"`
}

// Create builds and persists a new group with the caller as sole owner.
// The invite code is checked for collisions and regenerated up to
// maxCodeAttempts times before giving up.
func (s *GroupService) Create(ctx context.Context, user models.User, req CreateGroupRequest) (models.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Group{}, ErrGroupNameRequired
	}

	code, err := s.freshCode(ctx)
	if err != nil {
		return models.Group{}, err
	}

	nowMillis := time.Now().UnixMilli()
	group := models.NormalizeGroup(models.Group{
		ID:            models.NewID("g"),
		Code:          code,
		Name:          name,
		Description:   req.Description,
		BannerDataURL: req.BannerDataURL,
		Members: []models.Member{{
			ID:           user.ID,
			Username:     user.Username,
			Email:        user.Email,
			PhotoDataURL: user.PhotoDataURL,
			Role:         models.RoleOwner,
			JoinedAt:     nowMillis,
		}},
		Invited:   dedupInvites(req.Invited),
		CreatedBy: user.ID,
		CreatedAt: nowMillis,
		UpdatedAt: nowMillis,
	})

	group, err = s.groups.Create(ctx, group)
	if err != nil {
		return models.Group{}, err
	}

	slog.Info("group created", "group_id", group.ID, "code", group.Code, "owner", user.ID)
	return group, nil
}

// freshCode generates an invite code no live group holds yet.
func (s *GroupService) freshCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := models.NewInviteCode()
		inUse, err := s.groups.CodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
		slog.Warn("invite code collision, regenerating", "code", code)
	}
	return "", fmt.Errorf("could not generate a unique invite code after %d attempts", maxCodeAttempts)
}

func dedupInvites(emails []string) []models.Invite {
	seen := make(map[string]bool)
	invites := make([]models.Invite, 0, len(emails))
	for _, e := range emails {
		e = strings.TrimSpace(e)
		key := strings.ToLower(e)
		if e == "" || seen[key] {
			continue
		}
		seen[key] = true
		invites = append(invites, models.Invite{Email: e})
	}
	return invites
}

// Join adds the caller to the group holding the given invite code.
// Re-joining is idempotent: an existing member keeps role and joinedAt and
// only refreshes display fields. An owner is never demoted.
func (s *GroupService) Join(ctx context.Context, user models.User, code, displayName string) (models.Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return models.Group{}, ErrCodeRequired
	}

	found, err := s.groups.GetByCode(ctx, code)
	if err != nil {
		return models.Group{}, err
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = user.Username
	}

	group, err := s.mutate(ctx, found.ID, func(g *models.Group) error {
		member := models.Member{
			ID:           user.ID,
			Username:     name,
			Email:        user.Email,
			PhotoDataURL: user.PhotoDataURL,
			Role:         models.RoleMember,
			JoinedAt:     time.Now().UnixMilli(),
		}
		if i := g.FindMember(user.ID, user.Email); i >= 0 {
			member.Role = g.Members[i].Role
			member.JoinedAt = g.Members[i].JoinedAt
			g.Members[i] = member
		} else {
			g.Members = append(g.Members, member)
		}
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}

	slog.Info("member joined", "group_id", group.ID, "user_id", user.ID)
	return group, nil
}

// AppendWorkLog records time against a task, creating the task first when
// only a name is given. The log snapshots the caller's identity so later
// profile changes never rewrite history. Validation happens before any
// write.
func (s *GroupService) AppendWorkLog(ctx context.Context, user models.User, groupID string, req LogRequest) (models.WorkLog, error) {
	taskID := strings.TrimSpace(req.TaskID)
	taskName := strings.TrimSpace(req.TaskName)
	if taskID == "" && taskName == "" {
		return models.WorkLog{}, ErrNoTask
	}

	minutes := max(0, req.Hours)*60 + max(0, req.Minutes)
	if minutes <= 0 {
		return models.WorkLog{}, ErrInvalidDuration
	}

	stars := req.Stars
	if stars == 0 {
		stars = 3
	}

	var log models.WorkLog
	_, err := s.mutate(ctx, groupID, func(g *models.Group) error {
		task := resolveTask(g, taskID, taskName)
		log = models.NormalizeLog(models.WorkLog{
			ID:                 models.NewID("log"),
			TaskID:             task.ID,
			TaskName:           task.Name,
			Stars:              stars,
			Minutes:            minutes,
			PhotoDataURL:       req.PhotoDataURL,
			Description:        req.Description,
			MemberID:           user.ID,
			MemberName:         user.Username,
			MemberEmail:        user.Email,
			MemberPhotoDataURL: user.PhotoDataURL,
			CreatedAt:          time.Now().UnixMilli(),
		})
		g.WorkLogs = append([]models.WorkLog{log}, g.WorkLogs...)
		return nil
	})
	if err != nil {
		return models.WorkLog{}, err
	}

	slog.Info("work log appended",
		"group_id", groupID,
		"log_id", log.ID,
		"task_id", log.TaskID,
		"minutes", log.Minutes,
		"member", log.MemberID,
	)
	return log, nil
}

// resolveTask is the explicit resolve-or-create step of AppendWorkLog.
// A given id is trusted and looked up for its name (falling back to the
// default); a bare name always creates a new task, prepended to the list.
// Tasks are never deduplicated by name.
func resolveTask(g *models.Group, taskID, taskName string) models.WorkItem {
	if taskID != "" {
		if t := g.FindTask(taskID); t != nil {
			return *t
		}
		return models.WorkItem{ID: taskID, Name: models.DefaultTaskName}
	}
	task := models.NormalizeTask(models.WorkItem{
		ID:        models.NewID("t"),
		Name:      taskName,
		CreatedAt: time.Now().UnixMilli(),
	})
	g.WorkItems = append([]models.WorkItem{task}, g.WorkItems...)
	return task
}

// ToggleTaskComplete flips membership of taskID in the completed set.
// Unknown ids are tolerated; downstream aggregation simply never resolves
// them to a task.
func (s *GroupService) ToggleTaskComplete(ctx context.Context, groupID, taskID string) (models.Group, error) {
	group, err := s.mutate(ctx, groupID, func(g *models.Group) error {
		for i, id := range g.CompletedTaskIDs {
			if id == taskID {
				g.CompletedTaskIDs = append(g.CompletedTaskIDs[:i], g.CompletedTaskIDs[i+1:]...)
				return nil
			}
		}
		g.CompletedTaskIDs = append(g.CompletedTaskIDs, taskID)
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}

	slog.Info("task toggled", "group_id", groupID, "task_id", taskID, "complete", group.IsTaskComplete(taskID))
	return group, nil
}

// Delete removes the group unconditionally. Ownership checks, if any, are
// an outer layer's responsibility.
func (s *GroupService) Delete(ctx context.Context, groupID string) error {
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", groupID)
	return nil
}

// Get fetches a group for display. Work logs are re-sorted most recent
// first defensively; storage order is already prepend order but is not
// trusted.
func (s *GroupService) Get(ctx context.Context, groupID string) (models.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	sort.SliceStable(g.WorkLogs, func(i, j int) bool {
		return g.WorkLogs[i].CreatedAt > g.WorkLogs[j].CreatedAt
	})
	return g, nil
}

// ListForUser returns the caller's groups, most recently updated first.
func (s *GroupService) ListForUser(ctx context.Context, user models.User) ([]models.Group, error) {
	return s.groups.ListForUser(ctx, user)
}

// SyncProfile refreshes the caller's member display fields in every group
// they belong to after a profile update. Log snapshots stay frozen.
func (s *GroupService) SyncProfile(ctx context.Context, user models.User) error {
	groups, err := s.groups.ListForUser(ctx, user)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if g.FindMember(user.ID, user.Email) < 0 {
			continue
		}
		_, err := s.mutate(ctx, g.ID, func(g *models.Group) error {
			i := g.FindMember(user.ID, user.Email)
			if i < 0 {
				return nil
			}
			m := g.Members[i]
			m.ID = user.ID
			m.Username = user.Username
			m.Email = user.Email
			m.PhotoDataURL = user.PhotoDataURL
			g.Members[i] = m
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// mutate runs one optimistic read-transform-write cycle, retrying on
// version conflicts. apply must be pure with respect to the group it is
// handed: it is re-invoked on a fresh read after every conflict.
func (s *GroupService) mutate(ctx context.Context, groupID string, apply func(*models.Group) error) (models.Group, error) {
	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		g, err := s.groups.GetByID(ctx, groupID)
		if err != nil {
			return models.Group{}, err
		}
		if err := apply(&g); err != nil {
			return models.Group{}, err
		}
		g.UpdatedAt = time.Now().UnixMilli()

		err = s.groups.Update(ctx, g)
		if err == nil {
			g.Version++
			return g, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return models.Group{}, err
		}
		lastErr = err
		metrics.GroupWriteConflicts.Inc()
		slog.Warn("group write conflict, retrying", "group_id", groupID, "attempt", attempt+1)
	}
	return models.Group{}, fmt.Errorf("group %s: gave up after %d attempts: %w", groupID, maxWriteAttempts, lastErr)
}
