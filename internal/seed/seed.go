package seed

import (
	"context"
	"fmt"
	"time"

	"matha-service/internal/app"
	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

// Dataset is the reference content loaded into a fresh store.
type Dataset struct {
	Events     []domain.Event
	Artefacts  []domain.Artefact
	Categories []domain.QuizCategory
	Questions  []domain.QuizQuestion
	Learn      []domain.LearnContent
}

// Counts reports how many documents Apply wrote per collection.
type Counts map[string]int

func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Apply upserts every document, so running it twice leaves the same state.
// Questions failing validation abort the run before anything is written.
func Apply(ctx context.Context, store app.DocumentStore, data Dataset, log *logger.Logger) (Counts, error) {
	for _, q := range data.Questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}

	counts := Counts{}
	write := func(collection, id string, doc any) error {
		if err := store.Upsert(ctx, collection, id, doc); err != nil {
			return fmt.Errorf("seed %s/%s: %w", collection, id, err)
		}
		counts[collection]++
		return nil
	}

	for _, e := range data.Events {
		if err := write(domain.CollectionEvents, e.ID, e); err != nil {
			return counts, err
		}
	}
	for _, a := range data.Artefacts {
		if err := write(domain.CollectionArtefacts, a.ID, a); err != nil {
			return counts, err
		}
	}
	for _, c := range data.Categories {
		if err := write(domain.CollectionQuizCategories, c.ID, c); err != nil {
			return counts, err
		}
	}
	for _, q := range data.Questions {
		if err := write(domain.CollectionQuizQuestions, q.ID, q); err != nil {
			return counts, err
		}
	}
	for _, l := range data.Learn {
		if err := write(domain.CollectionLearnContent, l.ID, l); err != nil {
			return counts, err
		}
	}

	for collection, n := range counts {
		log.Info("seeded collection", "collection", collection, "documents", n)
	}
	return counts, nil
}

// Default is the content the app ships with.
func Default() Dataset {
	return Dataset{
		Events: []domain.Event{
			{
				ID:          "event1",
				Title:       "Magh Shudha Dwadashi Aradhane",
				Description: "Annual celebration of Sri Vadiraja Swamiji Aradhane at Sode",
				Date:        day(2026, time.February, 15),
				Location:    "Sode Vadiraja Matha",
				Category:    "Aradhane",
				IsActive:    true,
			},
			{
				ID:          "event2",
				Title:       "Paryaya 2026 Celebrations",
				Description: "Biennial Paryaya celebration at Udupi",
				Date:        day(2026, time.January, 18),
				Location:    "Udupi Sri Krishna Matha",
				Category:    "Paryaya",
				IsActive:    true,
			},
			{
				ID:          "event3",
				Title:       "Youth Spiritual Camp",
				Description: "Annual youth camp for spiritual learning and development",
				Date:        day(2026, time.May, 10),
				Location:    "Sode Vadiraja Matha",
				Category:    "Camp",
				IsActive:    true,
			},
		},
		Artefacts: []domain.Artefact{
			{
				ID:           "art1",
				Name:         "Sri Krishna Idol",
				Category:     "Idols",
				Description:  "Ancient brass idol of Lord Krishna used in daily worship",
				History:      "This idol has been worshipped for over 400 years at the Matha",
				Significance: "The deity is believed to bestow blessings on all devotees",
				Year:         "16th Century",
			},
			{
				ID:           "art2",
				Name:         "Vadiraja Stotra Manuscript",
				Category:     "Manuscripts",
				Description:  "Original handwritten manuscript of Sri Vadiraja compositions",
				History:      "Written by the disciples of Sri Vadiraja Tirtha himself",
				Significance: "Contains rare and unpublished verses",
				Year:         "1575 AD",
			},
			{
				ID:           "art3",
				Name:         "Silver Puja Thali",
				Category:     "Puja Items",
				Description:  "Ornate silver thali used in temple rituals",
				History:      "Donated by a devotee during the 18th century",
				Significance: "Used during special festivals and occasions",
				Year:         "18th Century",
			},
			{
				ID:           "art4",
				Name:         "Hayagriva Idol",
				Category:     "Idols",
				Description:  "Sacred Hayagriva deity idol worshipped by Sri Vadiraja",
				History:      "Sri Vadiraja received this idol as divine grace",
				Significance: "Believed to enhance wisdom and learning",
				Year:         "15th Century",
			},
		},
		Categories: []domain.QuizCategory{
			{ID: "cat1", Title: "Matha History", Icon: "landmark", QuestionCount: 25, Color: "#FF9933"},
			{ID: "cat2", Title: "Guru Parampara", Icon: "users", QuestionCount: 20, Color: "#138808"},
			{ID: "cat3", Title: "Scriptures", Icon: "book", QuestionCount: 30, Color: "#D4AF37"},
			{ID: "cat4", Title: "Festivals", Icon: "star", QuestionCount: 15, Color: "#17A2B8"},
			{ID: "cat5", Title: "Sri Vadiraja", Icon: "crown", QuestionCount: 20, Color: "#FFC107"},
		},
		Questions: []domain.QuizQuestion{
			{
				ID:            "q1",
				CategoryID:    "cat1",
				Question:      "When was Sode Vadiraja Matha established?",
				Options:       []string{"14th Century", "15th Century", "16th Century", "17th Century"},
				CorrectAnswer: 2,
				Difficulty:    domain.DifficultyEasy,
				Points:        10,
			},
			{
				ID:            "q2",
				CategoryID:    "cat1",
				Question:      "Where is Sode Vadiraja Matha located?",
				Options:       []string{"Udupi", "Sode", "Mangalore", "Dharwad"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyEasy,
				Points:        10,
			},
			{
				ID:            "q3",
				CategoryID:    "cat5",
				Question:      "What year did Sri Vadiraja Tirtha enter Brindavana?",
				Options:       []string{"1590", "1595", "1600", "1605"},
				CorrectAnswer: 2,
				Difficulty:    domain.DifficultyMedium,
				Points:        15,
			},
			{
				ID:            "q4",
				CategoryID:    "cat5",
				Question:      "Which deity did Sri Vadiraja Tirtha worship especially?",
				Options:       []string{"Vishnu", "Hayagriva", "Krishna", "Rama"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyEasy,
				Points:        10,
			},
			{
				ID:            "q5",
				CategoryID:    "cat3",
				Question:      "Who composed the Rukminisha Vijaya?",
				Options:       []string{"Madhwacharya", "Vadiraja Tirtha", "Raghavendra Swamy", "Vyasaraja"},
				CorrectAnswer: 1,
				Difficulty:    domain.DifficultyMedium,
				Points:        15,
			},
		},
		Learn: []domain.LearnContent{
			{ID: "learn1", Title: "Vadiraja Stuti", Type: domain.LearnStotra, Description: "Sacred hymn praising Sri Vadiraja Tirtha", Duration: "8 mins", Order: 1},
			{ID: "learn2", Title: "Introduction to Madhwa Philosophy", Type: domain.LearnPravachana, Description: "Understanding the basics of Dvaita philosophy", Duration: "45 mins", Order: 2},
			{ID: "learn3", Title: "Bhagavad Gita Chapter 1", Type: domain.LearnScripture, Description: "Arjuna Vishada Yoga - The Yoga of Despair", Duration: "25 mins", Order: 3},
			{ID: "learn4", Title: "Life of Sri Vadiraja", Type: domain.LearnVideo, Description: "Documentary on the life and teachings", Duration: "30 mins", Order: 4},
		},
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
