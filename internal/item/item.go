// Package item defines the documents of the task hierarchy and their
// structural validation rules.
//
// A project is a flat collection of documents discriminated by Kind:
// epics own features through epic_id, features own tasks through
// feature_id. Tasks are leaves. All three kinds share one document
// shape; fields that don't apply to a kind stay empty.
package item

import (
	"regexp"
	"strings"
	"time"
)

// Kind discriminates the three document types in a project collection.
type Kind string

const (
	KindEpic    Kind = "epic"
	KindFeature Kind = "feature"
	KindTask    Kind = "task"
)

// Status is the workflow state of an item. Epics use EpicStatuses,
// features and tasks use ItemStatuses; the two sets overlap on
// in_progress, done and blocked.
type Status string

const (
	StatusPlanning   Status = "planning"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// EpicStatuses is the allowed status set for epics.
var EpicStatuses = []Status{StatusPlanning, StatusInProgress, StatusDone, StatusBlocked}

// ItemStatuses is the allowed status set for features and tasks.
var ItemStatuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusBlocked}

// Item is one document in a project collection. EpicID is set only on
// features, FeatureID only on tasks. Type and the parent reference are
// immutable after creation; only title, desc, uat, status and
// reference_file may change.
type Item struct {
	ID            string    `json:"_id,omitempty"`
	Type          Kind      `json:"type"`
	EpicID        string    `json:"epic_id,omitempty"`
	FeatureID     string    `json:"feature_id,omitempty"`
	Title         string    `json:"title"`
	Desc          string    `json:"desc"`
	UAT           string    `json:"uat,omitempty"`
	Status        Status    `json:"status"`
	ReferenceFile string    `json:"reference_file,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChildKind returns the kind one level below k and the name of the
// reference field children use to point at k. ok is false for tasks,
// which have no children.
func ChildKind(k Kind) (child Kind, refField string, ok bool) {
	switch k {
	case KindEpic:
		return KindFeature, "epic_id", true
	case KindFeature:
		return KindTask, "feature_id", true
	default:
		return "", "", false
	}
}

// ParentRef returns the parent reference stored on it: epic_id for
// features, feature_id for tasks, empty for epics.
func (it *Item) ParentRef() string {
	switch it.Type {
	case KindFeature:
		return it.EpicID
	case KindTask:
		return it.FeatureID
	default:
		return ""
	}
}

// NewEpic builds an epic document with trimmed title and defaulted
// status. Timestamps are set to now.
func NewEpic(title, desc string, status Status) Item {
	if status == "" {
		status = StatusPlanning
	}
	now := time.Now().UTC()
	return Item{
		Type:      KindEpic,
		Title:     strings.TrimSpace(title),
		Desc:      desc,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewFeature builds a feature document under the given epic.
func NewFeature(epicID, title, desc, uat string, status Status, referenceFile string) Item {
	if status == "" {
		status = StatusTodo
	}
	now := time.Now().UTC()
	return Item{
		Type:          KindFeature,
		EpicID:        epicID,
		Title:         strings.TrimSpace(title),
		Desc:          desc,
		UAT:           uat,
		Status:        status,
		ReferenceFile: referenceFile,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewTask builds a task document under the given feature.
func NewTask(featureID, title, desc, uat string, status Status, referenceFile string) Item {
	if status == "" {
		status = StatusTodo
	}
	now := time.Now().UTC()
	return Item{
		Type:          KindTask,
		FeatureID:     featureID,
		Title:         strings.TrimSpace(title),
		Desc:          desc,
		UAT:           uat,
		Status:        status,
		ReferenceFile: referenceFile,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^a-z0-9_]`)
)

// SanitizeProjectName normalizes a user-supplied project name into a
// collection-safe identifier: lowercase, whitespace runs become
// underscores, everything outside [a-z0-9_] is stripped. The result
// may be empty, which callers must reject.
func SanitizeProjectName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRe.ReplaceAllString(s, "_")
	return disallowedRe.ReplaceAllString(s, "")
}
