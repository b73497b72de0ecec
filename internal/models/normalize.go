package models

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Defaults used when a required string is empty after trimming.
const (
	DefaultUsername  = "Guest"
	DefaultTaskName  = "Task"
	DefaultGroupName = "Untitled Group"
)

// codeAlphabet excludes visually confusable characters (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the invite code length.
const codeLength = 6

// NewID returns a fresh entity id with the given type prefix, e.g.
// NewID("g") -> "g_4f9c...".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// NewInviteCode returns a random 6-character invite code drawn from the
// confusion-free alphabet.
func NewInviteCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}

// ValidCode reports whether s is a well-formed invite code.
func ValidCode(s string) bool {
	if len(s) != codeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}

func now() int64 { return time.Now().UnixMilli() }

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// defaultString trims s and falls back to def when empty.
func defaultString(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// The Normalize* functions below are total: given any partially filled or
// malformed value they return a fully populated, invariant-satisfying record.
// They generate ids only when absent, so re-normalizing is idempotent.

// NormalizeUser coerces a raw user record. The id is left untouched: the
// identity provider owns id synthesis.
func NormalizeUser(u User) User {
	return User{
		ID:           strings.TrimSpace(u.ID),
		Username:     defaultString(u.Username, DefaultUsername),
		Email:        strings.TrimSpace(u.Email),
		PhotoDataURL: u.PhotoDataURL,
	}
}

// NormalizeMember coerces a raw member record.
func NormalizeMember(m Member) Member {
	role := m.Role
	if role != RoleOwner {
		role = RoleMember
	}
	joined := m.JoinedAt
	if joined <= 0 {
		joined = now()
	}
	return Member{
		ID:           strings.TrimSpace(m.ID),
		Username:     defaultString(m.Username, DefaultUsername),
		Email:        strings.TrimSpace(m.Email),
		PhotoDataURL: m.PhotoDataURL,
		Role:         role,
		JoinedAt:     joined,
	}
}

// NormalizeTask coerces a raw work item, generating a "t_" id when absent.
func NormalizeTask(t WorkItem) WorkItem {
	id := strings.TrimSpace(t.ID)
	if id == "" {
		id = NewID("t")
	}
	created := t.CreatedAt
	if created <= 0 {
		created = now()
	}
	return WorkItem{
		ID:        id,
		Name:      defaultString(t.Name, DefaultTaskName),
		CreatedAt: created,
	}
}

// NormalizeLog coerces a raw work log, generating a "log_" id when absent.
// Stars clamp to [1,5]; minutes floor at 0.
func NormalizeLog(l WorkLog) WorkLog {
	id := strings.TrimSpace(l.ID)
	if id == "" {
		id = NewID("log")
	}
	created := l.CreatedAt
	if created <= 0 {
		created = now()
	}
	minutes := l.Minutes
	if minutes < 0 {
		minutes = 0
	}
	return WorkLog{
		ID:                 id,
		TaskID:             strings.TrimSpace(l.TaskID),
		TaskName:           defaultString(l.TaskName, DefaultTaskName),
		Stars:              clamp(l.Stars, 1, 5),
		Minutes:            minutes,
		PhotoDataURL:       l.PhotoDataURL,
		Description:        strings.TrimSpace(l.Description),
		MemberID:           strings.TrimSpace(l.MemberID),
		MemberName:         defaultString(l.MemberName, DefaultUsername),
		MemberEmail:        strings.TrimSpace(l.MemberEmail),
		MemberPhotoDataURL: l.MemberPhotoDataURL,
		CreatedAt:          created,
	}
}

// NormalizeGroup is the composition root: it coerces the group itself and
// every nested member, task and log. Nil collections become empty; no
// element is ever dropped. The invite code is regenerated only when empty.
func NormalizeGroup(g Group) Group {
	id := strings.TrimSpace(g.ID)
	if id == "" {
		id = NewID("g")
	}
	code := strings.ToUpper(strings.TrimSpace(g.Code))
	if code == "" {
		code = NewInviteCode()
	}
	created := g.CreatedAt
	if created <= 0 {
		created = now()
	}
	updated := g.UpdatedAt
	if updated <= 0 {
		updated = now()
	}

	members := make([]Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = NormalizeMember(m)
	}
	invited := make([]Invite, 0, len(g.Invited))
	for _, inv := range g.Invited {
		invited = append(invited, Invite{Email: strings.TrimSpace(inv.Email)})
	}
	items := make([]WorkItem, len(g.WorkItems))
	for i, t := range g.WorkItems {
		items[i] = NormalizeTask(t)
	}
	logs := make([]WorkLog, len(g.WorkLogs))
	for i, l := range g.WorkLogs {
		logs[i] = NormalizeLog(l)
	}
	completed := make([]string, len(g.CompletedTaskIDs))
	copy(completed, g.CompletedTaskIDs)

	return Group{
		ID:               id,
		Code:             code,
		Name:             defaultString(g.Name, DefaultGroupName),
		Description:      strings.TrimSpace(g.Description),
		BannerDataURL:    g.BannerDataURL,
		Members:          members,
		Invited:          invited,
		WorkItems:        items,
		WorkLogs:         logs,
		CompletedTaskIDs: completed,
		CreatedBy:        strings.TrimSpace(g.CreatedBy),
		CreatedAt:        created,
		UpdatedAt:        updated,
		Version:          g.Version,
	}
}

// DecodeGroup decodes an untrusted document body into a normalized Group.
// It never fails: fields with the wrong JSON type degrade to their zero
// value (encoding/json keeps decoding past type errors) and normalization
// fills the rest. Every document crossing the store boundary goes through
// here.
func DecodeGroup(body []byte) Group {
	var g Group
	// Best effort: a type error still yields the fields that did decode.
	_ = json.Unmarshal(body, &g)
	return NormalizeGroup(g)
}
