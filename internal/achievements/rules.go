package achievements

import "mslcoach/internal/store"

// Achievement is one named rule: a predicate over the post-update progress
// snapshot plus display metadata and a one-time XP bonus.
type Achievement struct {
	ID          string
	Name        string
	Description string
	BonusXP     int
	Icon        string
	Check       func(p *store.UserProgress) bool `json:"-"`
}

// Rules is the static achievement table. Order is fixed so that multiple
// unlocks in one update always come back in the same sequence. The rule
// set is configuration, not user data.
var Rules = []Achievement{
	{
		ID:          "first_session",
		Name:        "First Steps",
		Description: "Complete your first practice session",
		BonusXP:     50,
		Icon:        "🎯",
		Check: func(p *store.UserProgress) bool {
			return p.TotalSessions >= 1
		},
	},
	{
		ID:          "10_sessions",
		Name:        "Consistent Learner",
		Description: "Complete 10 practice sessions",
		BonusXP:     100,
		Icon:        "📚",
		Check: func(p *store.UserProgress) bool {
			return p.TotalSessions >= 10
		},
	},
	{
		ID:          "50_sessions",
		Name:        "Dedicated MSL",
		Description: "Complete 50 practice sessions",
		BonusXP:     500,
		Icon:        "🏆",
		Check: func(p *store.UserProgress) bool {
			return p.TotalSessions >= 50
		},
	},
	{
		ID:          "perfect_score",
		Name:        "Perfect Response",
		Description: "Score 95+ on any question",
		BonusXP:     200,
		Icon:        "💯",
		Check: func(p *store.UserProgress) bool {
			return p.BestScore >= 95
		},
	},
	{
		ID:          "7_day_streak",
		Name:        "Week Warrior",
		Description: "Practice for 7 consecutive days",
		BonusXP:     300,
		Icon:        "🔥",
		Check: func(p *store.UserProgress) bool {
			return p.CurrentStreak >= 7
		},
	},
	{
		ID:          "all_categories",
		Name:        "Well Rounded",
		Description: "Practice all 7 categories",
		BonusXP:     250,
		Icon:        "🌟",
		Check: func(p *store.UserProgress) bool {
			return len(p.CategoryStats) >= 7
		},
	},
	{
		ID:          "all_personas",
		Name:        "People Person",
		Description: "Practice with all 3 personas",
		BonusXP:     150,
		Icon:        "👥",
		Check: func(p *store.UserProgress) bool {
			return len(p.PersonaStats) >= 3
		},
	},
	{
		ID:          "high_achiever",
		Name:        "High Achiever",
		Description: "Maintain an 80+ average score over 5 or more sessions",
		BonusXP:     400,
		Icon:        "⭐",
		Check: func(p *store.UserProgress) bool {
			return p.AverageScore >= 80 && p.TotalSessions >= 5
		},
	},
}

// ByID returns the achievement with the given id.
func ByID(id string) (Achievement, bool) {
	for _, a := range Rules {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
