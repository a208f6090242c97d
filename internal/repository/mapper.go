package repository

import (
	"github.com/google/uuid"

	"github.com/oggyb/homies/internal/db"
	"github.com/oggyb/homies/internal/domain"
)

func toDomainUser(u db.User) domain.User {
	p := u.Preferences
	prefs := domain.Preferences{
		Smoking:  p.Smoking,
		Drinking: p.Drinking,
		Pets:     p.Pets,
	}
	if p.RentExact != nil || p.RentMin != nil || p.RentMax != nil {
		prefs.Rent = &domain.RentPreference{Exact: p.RentExact, Min: p.RentMin, Max: p.RentMax}
	}
	if p.AgeMin != nil || p.AgeMax != nil {
		prefs.Age = &domain.Range{Min: p.AgeMin, Max: p.AgeMax}
	}
	for _, g := range p.Genders {
		prefs.Genders = append(prefs.Genders, domain.Gender(g))
	}

	return domain.User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		DateOfBirth:  u.DateOfBirth,
		Gender:       domain.Gender(u.Gender),
		Location:     domain.Location{City: u.City, State: u.State},
		Bio:          u.Bio,
		ShowUserData: u.ShowUserData,
		Preferences:  prefs,
	}
}

// FromDomainPreferences converts preferences to their column form.
// Used by the seeder and tests that insert users directly.
func FromDomainPreferences(p domain.Preferences) db.Preferences {
	out := db.Preferences{
		Smoking:  p.Smoking,
		Drinking: p.Drinking,
		Pets:     p.Pets,
	}
	if p.Rent != nil {
		out.RentExact, out.RentMin, out.RentMax = p.Rent.Exact, p.Rent.Min, p.Rent.Max
	}
	if p.Age != nil {
		out.AgeMin, out.AgeMax = p.Age.Min, p.Age.Max
	}
	for _, g := range p.Genders {
		out.Genders = append(out.Genders, string(g))
	}
	return out
}

func toDomainConnection(c db.Connection) *domain.Connection {
	out := &domain.Connection{
		ID: c.ID,
		Users: [2]domain.Slot{
			{UserID: c.UserLowID, Status: domain.Status(c.LowStatus)},
			{UserID: c.UserHighID, Status: domain.Status(c.HighStatus)},
		},
		InitiatedBy:       c.InitiatedBy,
		HasUnreadMessages: c.HasUnreadMessages,
		UnreadFor:         c.UnreadFor,
		Version:           c.Version,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	for _, m := range c.Messages {
		id, _ := uuid.Parse(m.ID)
		out.Messages = append(out.Messages, domain.Message{
			ID:       id,
			SenderID: m.SenderID,
			Text:     m.Text,
			SentAt:   m.SentAt,
		})
	}
	return out
}

func toDBMessage(connectionID uint64, m domain.Message) db.Message {
	id := m.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return db.Message{
		ID:           id.String(),
		ConnectionID: connectionID,
		SenderID:     m.SenderID,
		Text:         m.Text,
		SentAt:       m.SentAt,
	}
}
