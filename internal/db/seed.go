package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	seedFirstNames = []string{"Aarav", "Bea", "Chen", "Diya", "Eli", "Farah", "Gus", "Hana", "Ivan", "Jia",
		"Kabir", "Lena", "Mo", "Nia", "Omar", "Priya", "Quinn", "Rosa", "Sam", "Tara"}
	seedLastNames = []string{"Shah", "Okafor", "Li", "Patel", "Novak", "Haddad", "Berg", "Sato", "Petrov", "Wu"}
	seedGenders   = []string{"male", "female", "transgender", "non-binary", "other"}
	seedCities    = [][2]string{{"Pune", "Maharashtra"}, {"Mumbai", "Maharashtra"}, {"Bengaluru", "Karnataka"}, {"Jaipur", "Rajasthan"}}

	// every status combination a pair can reach through the actions
	seedStates = [][2]string{
		{"favorite", "favorite"},
		{"favorite", ""},
		{"ignored", ""},
		{"ignored", "both_ignored"},
		{"favorite", "ignored"},
		{"blocked", ""},
		{"blocked", "favorite"},
	}
)

// SeedTestData resets the database and populates it with demo users and connections.
//
// Behavior:
//  1. Clears existing data in `messages`, `connections` and `users`.
//  2. Creates 20 users with hashed passwords and varied preferences.
//  3. Creates connections covering every status combination; matched pairs
//     get a short chat.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := reset(db); err != nil {
		return err
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	const userCount = 20
	now := time.Now().UTC()
	for i := 1; i <= userCount; i++ {
		city := seedCities[r.Intn(len(seedCities))]
		user := User{
			FirstName:    seedFirstNames[i-1],
			LastName:     seedLastNames[r.Intn(len(seedLastNames))],
			Email:        fmt.Sprintf("user%d@example.com", i),
			Phone:        fmt.Sprintf("+91900000%04d", i),
			PasswordHash: string(hash),
			DateOfBirth:  now.AddDate(-(19 + r.Intn(27)), -r.Intn(12), -r.Intn(28)),
			Gender:       seedGenders[r.Intn(len(seedGenders))],
			City:         city[0],
			State:        city[1],
			Bio:          "Looking for a homie to share a flat with.",
			ShowUserData: r.Intn(2) == 0,
			Preferences:  randomPreferences(r),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Printf("Seeded %d users.", userCount)

	seen := map[[2]uint64]bool{}
	counter := 0
	for actorID := uint64(1); actorID <= userCount; actorID++ {
		for j := 0; j < 4; j++ { // each user acts on ~4 others
			otherID := uint64(r.Intn(userCount) + 1)
			low, high := min(actorID, otherID), max(actorID, otherID)
			if low == high || seen[[2]uint64{low, high}] {
				continue
			}
			seen[[2]uint64{low, high}] = true

			// cycle through states so that every one is present
			state := seedStates[counter%len(seedStates)]
			counter++

			conn := Connection{UserLowID: low, UserHighID: high, InitiatedBy: actorID, Version: 1}
			if actorID == low {
				conn.LowStatus, conn.HighStatus = state[0], state[1]
			} else {
				conn.HighStatus, conn.LowStatus = state[0], state[1]
			}
			if state[0] == "favorite" && state[1] == "favorite" {
				conn.Messages = seedChat(low, high, now)
				conn.HasUnreadMessages = true
				conn.UnreadFor = high
			}
			if err := db.Create(&conn).Error; err != nil {
				return fmt.Errorf("failed to seed connection: %w", err)
			}
		}
	}
	log.Printf("Seeded %d connections.", counter)
	return nil
}

// SeedMinimalTestData wipes the DB and inserts a small deterministic dataset.
//
// Dataset:
//   - Users: 1 Ann (no preferences), 2 Bob (age 18-30, shares contact data),
//     3 Cleo, 4 Dan
//   - Connections:
//   - 1 ↔ 2 matched
//   - 3 → 1 favorite, declined by 1
//   - 4 → 1 favorite, unanswered (4 admires 1)
func SeedMinimalTestData(db *gorm.DB) error {
	if err := reset(db); err != nil {
		return err
	}

	dob := func(year int) time.Time { return time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC) }
	min18, max30 := 18, 30
	users := []User{
		{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "u1@test.com", Phone: "1001", PasswordHash: "x",
			Gender: "female", DateOfBirth: dob(1999)},
		{ID: 2, FirstName: "Bob", LastName: "Marsh", Email: "u2@test.com", Phone: "1002", PasswordHash: "x",
			Gender: "male", DateOfBirth: dob(1998), ShowUserData: true,
			Preferences: Preferences{AgeMin: &min18, AgeMax: &max30}},
		{ID: 3, FirstName: "Cleo", LastName: "Ray", Email: "u3@test.com", Phone: "1003", PasswordHash: "x",
			Gender: "female", DateOfBirth: dob(2000)},
		{ID: 4, FirstName: "Dan", LastName: "Ito", Email: "u4@test.com", Phone: "1004", PasswordHash: "x",
			Gender: "male", DateOfBirth: dob(1995)},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	connections := []Connection{
		{UserLowID: 1, UserHighID: 2, LowStatus: "favorite", HighStatus: "favorite", InitiatedBy: 1, Version: 1},
		{UserLowID: 1, UserHighID: 3, LowStatus: "ignored", HighStatus: "favorite", InitiatedBy: 3, Version: 1},
		{UserLowID: 1, UserHighID: 4, LowStatus: "", HighStatus: "favorite", InitiatedBy: 4, Version: 1},
	}
	return db.Create(&connections).Error
}

// reset empties every table, children first.
func reset(db *gorm.DB) error {
	for _, table := range []string{"messages", "connections", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE connections AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('connections', 'users')")
	}
	return nil
}

func randomPreferences(r *rand.Rand) Preferences {
	var p Preferences
	maybeBool := func() *bool {
		if r.Intn(3) == 0 {
			return nil
		}
		v := r.Intn(2) == 0
		return &v
	}
	p.Smoking, p.Drinking, p.Pets = maybeBool(), maybeBool(), maybeBool()

	switch r.Intn(3) {
	case 0:
		exact := float64(5000 + 500*r.Intn(20))
		p.RentExact = &exact
	case 1:
		lo := float64(5000 + 500*r.Intn(10))
		hi := lo + 5000
		p.RentMin, p.RentMax = &lo, &hi
	}

	if r.Intn(2) == 0 {
		lo := 18 + r.Intn(10)
		hi := lo + 5 + r.Intn(15)
		p.AgeMin, p.AgeMax = &lo, &hi
	}
	if r.Intn(2) == 0 {
		p.Genders = []string{seedGenders[r.Intn(len(seedGenders))]}
	}
	return p
}

func seedChat(low, high uint64, now time.Time) []Message {
	lines := []struct {
		from uint64
		text string
	}{
		{low, "Hey! Still looking for a flatmate?"},
		{high, "Yes, are you free to see the place this weekend?"},
		{low, "Saturday works."},
	}
	out := make([]Message, 0, len(lines))
	for i, l := range lines {
		out = append(out, Message{
			ID:       uuid.NewString(),
			SenderID: l.from,
			Text:     l.text,
			SentAt:   now.Add(time.Duration(i-len(lines)) * time.Hour),
		})
	}
	return out
}
