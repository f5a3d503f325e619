package models

import "time"

// Questionnaire enums. A submission whose categorical fields fall outside these
// sets is rejected before anything is written.
var (
	DatingGoals       = []string{"casual-dating", "serious-relationship", "marriage", "friendship", "not-sure"}
	MatchCountBuckets = []string{"none", "1-5", "6-10", "more-than-10"}
	BodyTypes         = []string{"slim", "athletic", "average", "curvy", "muscular", "plus-size"}
	StylePreferences  = []string{"casual", "smart-casual", "business", "sporty", "trendy", "alternative"}
	Ethnicities       = []string{"asian", "black", "hispanic", "middle-eastern", "south-asian", "white", "mixed", "other"}
)

const (
	MinAge       = 18
	MaxAge       = 99
	MaxInterests = 10
	MaxBioLength = 2000
)

// ProfileSubmission is the onboarding questionnaire plus the uploaded photo
// URLs. Rows are only ever created inside the same transaction as their
// PaymentRecord; there is no standalone create path.
type ProfileSubmission struct {
	UserID           string     `gorm:"primaryKey;size:36" json:"user_id"`
	Name             string     `gorm:"size:128;not null" json:"name"`
	Age              int        `gorm:"not null" json:"age"`
	DatingGoal       string     `gorm:"size:32;not null" json:"dating_goal"`
	CurrentMatches   string     `gorm:"size:16;not null" json:"current_matches"`
	BodyType         string     `gorm:"size:16;not null" json:"body_type"`
	StylePreference  string     `gorm:"size:16;not null" json:"style_preference"`
	Ethnicity        string     `gorm:"size:16;not null" json:"ethnicity"`
	Bio              string     `gorm:"type:text" json:"bio"`
	Interests        StringList `gorm:"type:json" json:"interests"`
	Email            string     `gorm:"size:191;not null;uniqueIndex" json:"email"`
	Phone            *string    `gorm:"size:32" json:"phone,omitempty"`
	WeeklyTips       bool       `gorm:"default:false" json:"weekly_tips"`
	OriginalPhotos   StringList `gorm:"type:json" json:"original_photos"`
	ScreenshotPhotos StringList `gorm:"type:json" json:"screenshot_photos"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Payments []PaymentRecord `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

func (ProfileSubmission) TableName() string {
	return "profile_submissions"
}

// InEnum reports whether v is a member of the given closed set.
func InEnum(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
