package types

import (
  "time"

  "github.com/google/uuid"
)

// Profile is owned by the onboarding/settings flows; the scoring engine only
// ever reads it.
type Profile struct {
  ID                uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
  Religion          string     `gorm:"column:religion" json:"religion"`
  ReligiousSect     string     `gorm:"column:religious_sect" json:"religious_sect"`
  PracticeLevel     string     `gorm:"column:practice_level" json:"practice_level"`
  PrayerFrequency   string     `gorm:"column:prayer_frequency" json:"prayer_frequency"`
  Education         string     `gorm:"column:education" json:"education"`
  Occupation        string     `gorm:"column:occupation" json:"occupation"`
  CareerGoals       string     `gorm:"column:career_goals" json:"career_goals"`
  Smoking           string     `gorm:"column:smoking" json:"smoking"`
  Drinking          string     `gorm:"column:drinking" json:"drinking"`
  Exercise          string     `gorm:"column:exercise" json:"exercise"`
  Diet              string     `gorm:"column:diet" json:"diet"`
  MaritalStatus     string     `gorm:"column:marital_status" json:"marital_status"`
  WantsChildren     *bool      `gorm:"column:wants_children" json:"wants_children"`
  FamilyValues      string     `gorm:"column:family_values" json:"family_values"`
  WillingToRelocate *bool      `gorm:"column:willing_to_relocate" json:"willing_to_relocate"`
  Bio               string     `gorm:"column:bio" json:"bio"`
  Location          string     `gorm:"column:location;index" json:"location"`
  CityCluster       string     `gorm:"column:city_cluster" json:"city_cluster"`
  CreatedAt         time.Time  `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt         time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string {
  return "profile"
}
