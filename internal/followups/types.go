package followups

import "time"

// Status is the engagement pipeline stage of a follow-up person. The client
// only filters on it; transitions are the backend's business.
type Status string

const (
	StatusVisitor  Status = "VISITOR"
	StatusProspect Status = "PROSPECT"
	StatusMember   Status = "MEMBER"
	StatusArchived Status = "ARCHIVED"
)

// NoteType classifies a follow-up note.
type NoteType string

const (
	NoteInternal NoteType = "INTERNAL"
	NoteShared   NoteType = "SHARED"
	NotePastoral NoteType = "PASTORAL"
)

// Person is a tracked visitor or prospect.
type Person struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Status           Status    `json:"status"`
	AssignedMemberID string    `json:"assignedMemberId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MemberRef is the reduced member projection embedded in a detail response.
type MemberRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Detail is the full follow-up record returned by GET /follow-ups/:id.
type Detail struct {
	Person
	UpdatedAt       time.Time  `json:"updatedAt"`
	ArchivedAt      *time.Time `json:"archivedAt,omitempty"`
	ChurchID        string     `json:"churchId"`
	CreatedByMember *MemberRef `json:"createdByMember,omitempty"`
}

// Note is one follow-up note, owned by a Person.
type Note struct {
	ID             string    `json:"id"`
	Type           NoteType  `json:"type"`
	Text           string    `json:"text"`
	AuthorPersonID string    `json:"authorPersonId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PersonInput is the create/update payload. FirstName and LastName are
// required; the rest is optional.
type PersonInput struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Status           Status `json:"status,omitempty"`
	AssignedMemberID string `json:"assignedMemberId,omitempty"`
}

// NoteInput is the create/update payload for a note.
type NoteInput struct {
	Type NoteType `json:"type"`
	Text string   `json:"text"`
}

// Filters is the superset of list query parameters; zero values are omitted
// from the query string.
type Filters struct {
	Status       Status
	Search       string
	AssignedToMe bool
	Page         int
	Limit        int
}
