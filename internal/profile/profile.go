package profile

import (
	"context"
	"slices"
)

// CurrentSchemaVersion is the blob layout written by this build.
const CurrentSchemaVersion = 2

const (
	DefaultLanguage = "en"
	TopicMixed      = "mixed"
)

// Profile is the persisted per-user record. It is created lazily on first
// contact and never deleted.
type Profile struct {
	UserID          int64  `json:"userId"`
	Language        string `json:"language"`
	TopicPreference string `json:"topicPreference"`
	Premium         bool   `json:"premium,omitempty"`

	LifetimeAttempts  int `json:"lifetimeAttempts"`
	LifetimeCorrect   int `json:"lifetimeCorrect"`
	SessionsCompleted int `json:"sessionsCompleted"`
	BestScore         int `json:"bestScore"`

	// Streak counts consecutive calendar days with a completed session.
	Streak          int `json:"streak"`
	LastSessionDate Day `json:"lastSessionDate,omitempty"`

	LastFreeDate          Day `json:"lastFreeDate,omitempty"`
	FreeSessionsUsedToday int `json:"freeSessionsUsedToday"`

	// WrongBank is an ordered set of question IDs the user missed.
	WrongBank []string `json:"wrongBank"`

	JoinedOn      Day `json:"joinedOn,omitempty"`
	SchemaVersion int `json:"schemaVersion"`

	// Revision is the storage revision the profile was loaded at.
	// Stores use it for optimistic concurrency; it is not part of the blob.
	Revision int64 `json:"-"`
}

// New returns a fresh profile with defaults applied.
func New(userID int64, joined Day) *Profile {
	return &Profile{
		UserID:          userID,
		Language:        DefaultLanguage,
		TopicPreference: TopicMixed,
		WrongBank:       []string{},
		JoinedOn:        joined,
		SchemaVersion:   CurrentSchemaVersion,
	}
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	c := *p
	c.WrongBank = slices.Clone(p.WrongBank)
	if c.WrongBank == nil {
		c.WrongBank = []string{}
	}
	return &c
}

// InWrongBank reports whether id is in the wrong-answer bank.
func (p *Profile) InWrongBank(id string) bool {
	return slices.Contains(p.WrongBank, id)
}

// AddWrong inserts id into the wrong-answer bank if absent.
func (p *Profile) AddWrong(id string) {
	if !p.InWrongBank(id) {
		p.WrongBank = append(p.WrongBank, id)
	}
}

// RemoveWrong drops id from the wrong-answer bank.
func (p *Profile) RemoveWrong(id string) {
	p.WrongBank = slices.DeleteFunc(p.WrongBank, func(s string) bool { return s == id })
}

// Repository loads and saves profiles. Load creates a default profile
// when none exists.
type Repository interface {
	Load(ctx context.Context, userID int64) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}
