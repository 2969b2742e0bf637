package profile

import (
	"encoding/json"
	"fmt"
	"slices"
)

// legacyBlob carries the keys older deployments wrote. Only keys that the
// current layout lacks are consulted.
type legacyBlob struct {
	UILang           *string  `json:"uiLang"`
	Mode             *string  `json:"mode"`
	WrongQuestions   []string `json:"wrongQuestions"`
	TotalAttempted   *int     `json:"totalAttempted"`
	TotalCorrect     *int     `json:"totalCorrect"`
	StreakDays       *int     `json:"streakDays"`
	LastPracticeDate *string  `json:"lastPracticeDate"`
	LastFreeTestDate *string  `json:"lastFreeTestDate"`
	FreeTestsToday   *int     `json:"freeTestsToday"`
	IsPremium        *bool    `json:"isPremium"`
}

// Encode serializes a profile blob in the current layout.
func Encode(p *Profile) ([]byte, error) {
	out := *p
	out.SchemaVersion = CurrentSchemaVersion
	if out.WrongBank == nil {
		out.WrongBank = []string{}
	}
	return json.Marshal(&out)
}

// Decode parses a stored blob for userID. Missing fields get defaults and
// legacy keys are migrated; unknown keys are ignored. Only malformed JSON
// is an error.
func Decode(userID int64, data []byte) (*Profile, error) {
	p := New(userID, "")
	if len(data) == 0 {
		return p, nil
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return nil, fmt.Errorf("decode profile %d: %w", userID, err)
	}
	if err := json.Unmarshal(data, p); err != nil {
		// A field of the wrong type; keep what decoded and fall through
		// to the legacy pass and normalization.
		p = decodeLenient(userID, present)
	}

	var legacy legacyBlob
	_ = json.Unmarshal(data, &legacy)
	migrateLegacy(p, &legacy, present)

	p.UserID = userID
	normalize(p)
	return p, nil
}

// decodeLenient decodes field by field, skipping values that do not fit.
func decodeLenient(userID int64, present map[string]json.RawMessage) *Profile {
	p := New(userID, "")
	for key, raw := range present {
		single, err := json.Marshal(map[string]json.RawMessage{key: raw})
		if err != nil {
			continue
		}
		_ = json.Unmarshal(single, p)
	}
	return p
}

func migrateLegacy(p *Profile, l *legacyBlob, present map[string]json.RawMessage) {
	has := func(k string) bool { _, ok := present[k]; return ok }

	if !has("language") && l.UILang != nil {
		p.Language = *l.UILang
	}
	if !has("topicPreference") && l.Mode != nil {
		p.TopicPreference = *l.Mode
	}
	if !has("wrongBank") && l.WrongQuestions != nil {
		p.WrongBank = l.WrongQuestions
	}
	if !has("lifetimeAttempts") && l.TotalAttempted != nil {
		p.LifetimeAttempts = *l.TotalAttempted
	}
	if !has("lifetimeCorrect") && l.TotalCorrect != nil {
		p.LifetimeCorrect = *l.TotalCorrect
	}
	if !has("streak") && l.StreakDays != nil {
		p.Streak = *l.StreakDays
	}
	if !has("lastSessionDate") && l.LastPracticeDate != nil {
		if d, err := ParseDay(*l.LastPracticeDate); err == nil {
			p.LastSessionDate = d
		}
	}
	if !has("lastFreeDate") && l.LastFreeTestDate != nil {
		if d, err := ParseDay(*l.LastFreeTestDate); err == nil {
			p.LastFreeDate = d
		}
	}
	if !has("freeSessionsUsedToday") && l.FreeTestsToday != nil {
		p.FreeSessionsUsedToday = *l.FreeTestsToday
	}
	if !has("premium") && l.IsPremium != nil {
		p.Premium = *l.IsPremium
	}
}

func normalize(p *Profile) {
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.TopicPreference == "" {
		p.TopicPreference = TopicMixed
	}

	for _, n := range []*int{&p.LifetimeAttempts, &p.LifetimeCorrect, &p.SessionsCompleted, &p.BestScore, &p.Streak, &p.FreeSessionsUsedToday} {
		if *n < 0 {
			*n = 0
		}
	}
	if p.LifetimeCorrect > p.LifetimeAttempts {
		p.LifetimeCorrect = p.LifetimeAttempts
	}

	for _, d := range []*Day{&p.LastSessionDate, &p.LastFreeDate, &p.JoinedOn} {
		if parsed, err := ParseDay(string(*d)); err == nil {
			*d = parsed
		} else {
			*d = ""
		}
	}

	bank := make([]string, 0, len(p.WrongBank))
	for _, id := range p.WrongBank {
		if id != "" && !slices.Contains(bank, id) {
			bank = append(bank, id)
		}
	}
	p.WrongBank = bank
	p.SchemaVersion = CurrentSchemaVersion
}
