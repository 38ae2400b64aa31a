package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var demoNames = []string{
	"Alex", "Dmitry", "Ivan", "Maxim", "Nikita", "Pavel", "Sergey", "Artem", "Oleg", "Roman",
	"Anna", "Maria", "Elena", "Olga", "Daria", "Sofia", "Polina", "Vera", "Kira", "Alina",
}

var demoCities = []string{"Moscow", "Saint Petersburg", "Kazan", "Novosibirsk", "Sochi"}

// SeedDemoData resets the database and populates it with demo profiles,
// likes and messages for local development.
//
// Behavior:
//  1. Clears messages, likes and users (in dependency order).
//  2. Creates 20 users (10 male interested in female, 10 female interested in male).
//  3. Generates ~100 likes between opposite genders; every 3rd pair is made mutual.
//  4. Starts a short conversation for each mutual pair.
func SeedDemoData(db *gorm.DB, log *slog.Logger) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"messages", "likes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Seed Users (10 male, 10 female) ---
	users := make([]User, 0, len(demoNames))
	for i, name := range demoNames {
		gender, interestedIn := "male", "female"
		if i >= 10 {
			gender, interestedIn = "female", "male"
		}
		bio := fmt.Sprintf("Hi, I'm %s!", name)
		location := demoCities[r.Intn(len(demoCities))]
		image := fmt.Sprintf("/api/placeholder/400/600?user=%d", i+1)

		users = append(users, User{
			Email:        fmt.Sprintf("user%d@example.com", i+1),
			PasswordHash: string(hash),
			Name:         name,
			Bio:          &bio,
			Age:          18 + r.Intn(20),
			ProfileImage: &image,
			Images:       StringList{image},
			Gender:       gender,
			InterestedIn: interestedIn,
			Location:     &location,
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	log.Info("seeded users", "count", len(users))

	// --- Seed Likes ---
	likes, matches := 0, 0
	for i := range users {
		for j := 0; j < 5; j++ {
			from := users[i]
			to := users[r.Intn(len(users))]
			if from.ID == to.ID || from.Gender == to.Gender {
				continue
			}

			pairs := []Like{{FromUserID: from.ID, ToUserID: to.ID}}
			if likes%3 == 0 {
				pairs = append(pairs, Like{FromUserID: to.ID, ToUserID: from.ID})
			}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&pairs)
			if res.Error != nil {
				return fmt.Errorf("failed to seed like: %w", res.Error)
			}
			likes++

			if len(pairs) == 2 && res.RowsAffected == 2 {
				msgs := []Message{
					{Content: fmt.Sprintf("Hey %s!", to.Name), SenderID: from.ID, ReceiverID: to.ID},
					{Content: fmt.Sprintf("Hi %s, nice to match with you", from.Name), SenderID: to.ID, ReceiverID: from.ID},
				}
				for k := range msgs {
					if err := db.Create(&msgs[k]).Error; err != nil {
						return fmt.Errorf("failed to seed message: %w", err)
					}
				}
				matches++
			}
		}
	}
	log.Info("seeded likes", "likes", likes, "matches", matches)

	return nil
}
