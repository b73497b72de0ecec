package models

// Roles a Member can hold within a group. The creator becomes the sole
// owner; everyone joining by invite code is a plain member. Ownership is
// never reassigned.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Member is one user's membership record inside a group.
//
// ID/Username/Email/PhotoDataURL mirror the user's current display fields
// and are refreshed on re-join or profile update; Role and JoinedAt are
// fixed at first join.
type Member struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PhotoDataURL string `json:"photoDataUrl"`
	Role         string `json:"role"`

	// JoinedAt is the Unix-millisecond timestamp of the first join.
	JoinedAt int64 `json:"joinedAt"`
}

// WorkItem is a named task within a group. Tasks are only ever created
// implicitly, the first time work is logged against a new name.
type WorkItem struct {
	// ID is the unique identifier for the task ("t_" prefix).
	ID string `json:"id"`

	// Name is the display name of the task (e.g. "Cleaning").
	Name string `json:"name"`

	// CreatedAt is the Unix-millisecond timestamp when the task appeared.
	CreatedAt int64 `json:"createdAt"`
}

// WorkLog is one immutable record of time spent on a task.
//
// TaskName and the Member* fields are snapshots taken at log time; renaming
// a task or editing a profile later does not alter existing logs.
type WorkLog struct {
	// ID is the unique identifier for the log ("log_" prefix).
	ID string `json:"id"`

	TaskID   string `json:"taskId"`
	TaskName string `json:"taskName"`

	// Stars is a 1-5 self rating of the work.
	Stars int `json:"stars"`

	// Minutes is the time spent, always >= 0.
	Minutes int `json:"minutes"`

	// PhotoDataURL is an optional inline photo of the finished work.
	PhotoDataURL string `json:"photoDataUrl"`

	// Description is an optional free-text note.
	Description string `json:"description"`

	MemberID           string `json:"memberId"`
	MemberName         string `json:"memberName"`
	MemberEmail        string `json:"memberEmail"`
	MemberPhotoDataURL string `json:"memberPhotoDataUrl"`

	// CreatedAt is the Unix-millisecond timestamp when the log was written.
	CreatedAt int64 `json:"createdAt"`
}

// Invite is a pending email invitation attached to a group. Invites are
// informational only; joining always goes through the invite code.
type Invite struct {
	Email string `json:"email"`
}

// Group is the unit of storage: a self-contained shared workspace.
//
// WorkLogs are prepended (most recent first); display re-sorts by CreatedAt
// defensively. CompletedTaskIDs has set semantics but is stored as a list.
type Group struct {
	// ID is the unique identifier for the group ("g_" prefix).
	ID string `json:"id"`

	// Code is the 6-character invite code ([A-Z2-9], no confusable
	// characters). It is the only join lookup key.
	Code string `json:"code"`

	Name          string `json:"name"`
	Description   string `json:"description"`
	BannerDataURL string `json:"bannerDataUrl"`

	Members   []Member   `json:"members"`
	Invited   []Invite   `json:"invited"`
	WorkItems []WorkItem `json:"workItems"`
	WorkLogs  []WorkLog  `json:"workLogs"`

	CompletedTaskIDs []string `json:"completedTaskIds"`

	// CreatedBy is the user id of the creator.
	CreatedBy string `json:"createdBy"`

	// CreatedAt/UpdatedAt are Unix-millisecond timestamps; UpdatedAt is
	// refreshed on every mutation.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`

	// Version counts writes and backs optimistic concurrency in the store.
	// It is not part of the user-visible document shape.
	Version int64 `json:"-"`
}

// FindMember returns the index of the member matching the given identity by
// the same-person rule, or -1.
func (g *Group) FindMember(id, email string) int {
	for i, m := range g.Members {
		if SamePerson(id, email, m.ID, m.Email) {
			return i
		}
	}
	return -1
}

// FindTask returns the work item with the given id, or nil.
func (g *Group) FindTask(taskID string) *WorkItem {
	for i := range g.WorkItems {
		if g.WorkItems[i].ID == taskID {
			return &g.WorkItems[i]
		}
	}
	return nil
}

// IsTaskComplete reports membership of taskID in the completed set.
func (g *Group) IsTaskComplete(taskID string) bool {
	for _, id := range g.CompletedTaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}
