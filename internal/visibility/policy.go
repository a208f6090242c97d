// Package visibility decides what part of a profile a viewer may see.
package visibility

import (
	"time"

	"github.com/oggyb/homies/internal/domain"
	"github.com/oggyb/homies/internal/relationship"
	"github.com/oggyb/homies/internal/scoring"
)

// View is a profile as shown to one viewer. Email and Phone are empty
// unless the viewer is allowed to see them.
type View struct {
	ID           uint64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Age          int
	Gender       domain.Gender
	Location     domain.Location
	Bio          string
	Preferences  domain.Preferences
	Relationship relationship.Type
	MyStatus     domain.Status
	TheirStatus  domain.Status
	IsMatched    bool
}

// ContactVisible reports whether subject's contact fields are revealed to
// viewer: they must be matched and subject must have opted in.
func ContactVisible(viewer, subject domain.User, conn *domain.Connection) bool {
	if conn == nil || !conn.Has(viewer.ID) || !conn.Has(subject.ID) || viewer.ID == subject.ID {
		return false
	}
	return relationship.Derive(conn) == relationship.TypeMatched && subject.ShowUserData
}

// ExposedFields builds the view of subject for viewer. conn may be nil.
func ExposedFields(viewer, subject domain.User, conn *domain.Connection, now time.Time) View {
	v := View{
		ID:           subject.ID,
		FirstName:    subject.FirstName,
		LastName:     subject.LastName,
		Age:          scoring.Age(subject.DateOfBirth, now),
		Gender:       subject.Gender,
		Location:     subject.Location,
		Bio:          subject.Bio,
		Preferences:  subject.Preferences,
		Relationship: relationship.TypeNone,
	}

	if conn != nil && conn.Has(viewer.ID) && conn.Has(subject.ID) {
		v.Relationship = relationship.Derive(conn)
		v.MyStatus = conn.StatusOf(viewer.ID)
		v.TheirStatus = conn.StatusOf(subject.ID)
		v.IsMatched = v.Relationship == relationship.TypeMatched
	}

	if ContactVisible(viewer, subject, conn) {
		v.Email = subject.Email
		v.Phone = subject.Phone
	}
	return v
}
