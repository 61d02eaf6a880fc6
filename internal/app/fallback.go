package app

import (
	"time"

	"matha-service/internal/domain"
)

// Local datasets served when the store cannot be reached (or has nothing yet).
// Returned as fresh copies so callers may filter in place.

func fallbackCategories() []domain.QuizCategory {
	return []domain.QuizCategory{
		{ID: "1", Title: "Matha History", Icon: "landmark", QuestionCount: 25, Color: "#FF9933"},
		{ID: "2", Title: "Guru Parampara", Icon: "users", QuestionCount: 20, Color: "#138808"},
		{ID: "3", Title: "Scriptures", Icon: "book", QuestionCount: 30, Color: "#D4AF37"},
		{ID: "4", Title: "Festivals", Icon: "star", QuestionCount: 15, Color: "#17A2B8"},
		{ID: "5", Title: "Sri Vadiraja", Icon: "crown", QuestionCount: 20, Color: "#FFC107"},
		{ID: "6", Title: "Mixed Quiz", Icon: "random", QuestionCount: 50, Color: "#DC3545"},
	}
}

func fallbackEvents() []domain.Event {
	return []domain.Event{
		{
			ID:          "1",
			Title:       "Magh Shudha Dwadashi Aradhane",
			Description: "Annual celebration of Sri Vadiraja Swamiji Aradhane",
			Date:        time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC),
			Location:    "Sode Vadiraja Matha",
			Category:    "Aradhane",
			IsActive:    true,
		},
		{
			ID:          "2",
			Title:       "Paryaya 2026 Celebrations",
			Description: "Biennial Paryaya celebration at Udupi",
			Date:        time.Date(2026, time.January, 18, 0, 0, 0, 0, time.UTC),
			Location:    "Udupi Sri Krishna Matha",
			Category:    "Paryaya",
			IsActive:    true,
		},
		{
			ID:          "3",
			Title:       "Youth Spiritual Camp",
			Description: "Annual youth camp for spiritual learning",
			Date:        time.Date(2026, time.May, 10, 0, 0, 0, 0, time.UTC),
			Location:    "Sode Vadiraja Matha",
			Category:    "Camp",
			IsActive:    true,
		},
	}
}

func fallbackArtefacts() []domain.Artefact {
	return []domain.Artefact{
		{ID: "1", Name: "Sri Krishna Idol", Category: "Idols", Description: "Ancient brass idol of Lord Krishna", Year: "16th Century"},
		{ID: "2", Name: "Silver Puja Thali", Category: "Puja Items", Description: "Ornate silver thali used in temple rituals", Year: "18th Century"},
		{ID: "3", Name: "Vadiraja Stotra Manuscript", Category: "Manuscripts", Description: "Original handwritten manuscript", Year: "1575 AD"},
		{ID: "4", Name: "Hayagriva Idol", Category: "Idols", Description: "Sacred Hayagriva deity idol", Year: "15th Century"},
	}
}

func fallbackLearnContent() []domain.LearnContent {
	return []domain.LearnContent{
		{ID: "1", Title: "Vadiraja Stuti", Type: domain.LearnStotra, Description: "Sacred hymn praising Sri Vadiraja Tirtha", Duration: "8 mins", Order: 1},
		{ID: "2", Title: "Introduction to Madhwa Philosophy", Type: domain.LearnPravachana, Description: "Understanding the basics of Dvaita philosophy", Duration: "45 mins", Order: 2},
		{ID: "3", Title: "Bhagavad Gita Chapter 1", Type: domain.LearnScripture, Description: "Arjuna Vishada Yoga", Duration: "25 mins", Order: 3},
		{ID: "4", Title: "Life of Sri Vadiraja", Type: domain.LearnVideo, Description: "Documentary on the life and teachings", Duration: "30 mins", Order: 4},
	}
}

func fallbackLeaderboard() []domain.LeaderboardEntry {
	names := []struct {
		name   string
		points int
	}{
		{"Madhava Rao", 3200},
		{"Raghavendra K", 2850},
		{"Srinivas P", 2650},
		{"Narayana Achar", 2500},
		{"Krishna Bhat", 2350},
		{"Vishnu Sharma", 2200},
		{"Lakshmi Devi", 2100},
		{"Ganesh Hegde", 1950},
		{"Anand Kumar", 1850},
		{"Padma S", 1750},
	}
	entries := make([]domain.LeaderboardEntry, len(names))
	for i, n := range names {
		entries[i] = domain.LeaderboardEntry{
			Rank:        i + 1,
			DisplayName: n.name,
			Avatar:      domain.Avatar(n.name),
			Points:      n.points,
		}
	}
	return entries
}
