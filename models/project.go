package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultStatuses is the status vocabulary a project starts with when the
// creator does not supply one.
var DefaultStatuses = []string{"Todo", "In Progress", "Done"}

// Attachment is an uploaded file recorded against a project or a task. The
// file itself lives on disk under the uploads directory; StoredFilename is
// the unique on-disk name.
type Attachment struct {
	Filename       string             `bson:"filename" json:"filename"`
	StoredFilename string             `bson:"storedFilename" json:"storedFilename"`
	URL            string             `bson:"url" json:"url"`
	MimeType       string             `bson:"mimeType" json:"mimeType"`
	Size           int64              `bson:"size" json:"size"`
	UploadedBy     primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	UploadedAt     time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}

type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Customer    string             `bson:"customer" json:"customer"`
	Company     primitive.ObjectID `bson:"company" json:"company"`
	Statuses    []string           `bson:"statuses" json:"statuses"`
	Attachments []Attachment       `bson:"attachments" json:"attachments"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	EndDate     *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// HasStatus reports whether s is part of the project's status vocabulary.
func (p *Project) HasStatus(s string) bool {
	for _, status := range p.Statuses {
		if status == s {
			return true
		}
	}
	return false
}

// NormalizeStatuses trims a proposed status vocabulary and reports whether
// it is usable: at least one entry, no blank entries, no duplicates.
func NormalizeStatuses(statuses []string) ([]string, bool) {
	if len(statuses) == 0 {
		return nil, false
	}
	seen := make(map[string]bool, len(statuses))
	cleaned := make([]string, 0, len(statuses))
	for _, s := range statuses {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return nil, false
		}
		seen[s] = true
		cleaned = append(cleaned, s)
	}
	return cleaned, true
}
