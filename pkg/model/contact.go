package model

import (
	"sort"
	"time"
)

const (
	ContactNew        = "new"
	ContactInProgress = "in_progress"
	ContactReplied    = "replied"
	ContactClosed     = "closed"
)

var contactStatusLabels = map[string]string{
	ContactNew:        "New",
	ContactInProgress: "In Progress",
	ContactReplied:    "Replied",
	ContactClosed:     "Closed",
}

var ContactStatuses = []string{
	ContactNew,
	ContactInProgress,
	ContactReplied,
	ContactClosed,
}

var concernLabels = map[string]string{
	"general_inquiry":        "General Inquiry",
	"back_pain":              "Back Pain",
	"neck_pain":              "Neck Pain",
	"joint_pain":             "Joint Pain",
	"sports_injury":          "Sports Injury",
	"post_surgery_recovery":  "Post-Surgery Recovery",
	"neurological_condition": "Neurological Condition",
	"pediatric_care":         "Pediatric Care",
	"home_visit_request":     "Home Visit Request",
	"online_consultation":    "Online Consultation",
	"emergency_care":         "Emergency Care",
	"other":                  "Other",
}

type Contact struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,max=100"`
	Email       string    `json:"email" bson:"email" validate:"required,email,max=254"`
	Phone       string    `json:"phone" bson:"phone" validate:"required,max=20"`
	ConcernType string    `json:"concern_type" bson:"concern_type" validate:"required,contact_concern"`
	Subject     string    `json:"subject" bson:"subject" validate:"required,max=5000"`
	Message     string    `json:"message" bson:"message" validate:"required,max=5000"`
	Status      string    `json:"status" bson:"status" validate:"required,contact_status"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type ContactPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ConcernType string `json:"concern_type"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
}

type ContactStats struct {
	Total      int64 `json:"total_contacts"`
	New        int64 `json:"new_contacts"`
	InProgress int64 `json:"in_progress_contacts"`
	Replied    int64 `json:"replied_contacts"`
	Closed     int64 `json:"closed_contacts"`
}

type ContactView struct {
	*Contact
	ConcernTypeDisplay string `json:"concern_type_display"`
	StatusDisplay      string `json:"status_display"`
}

func (c *Contact) RecordKind() string { return KindContact }
func (c *Contact) RecordID() string   { return c.ID }

func (c *Contact) View() ContactView {
	return ContactView{
		Contact:            c,
		ConcernTypeDisplay: ConcernLabel(c.ConcernType),
		StatusDisplay:      ContactStatusLabel(c.Status),
	}
}

func ContactViews(items []*Contact) []ContactView {
	views := make([]ContactView, 0, len(items))
	for _, c := range items {
		views = append(views, c.View())
	}
	return views
}

func IsValidConcern(s string) bool {
	_, ok := concernLabels[s]
	return ok
}

func ConcernLabel(s string) string {
	return labelOr(concernLabels, s)
}

func Concerns() []string {
	out := make([]string, 0, len(concernLabels))
	for k := range concernLabels {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func IsValidContactStatus(s string) bool {
	_, ok := contactStatusLabels[s]
	return ok
}

func ContactStatusLabel(s string) string {
	return labelOr(contactStatusLabels, s)
}
