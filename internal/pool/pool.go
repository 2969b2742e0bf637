// Package pool assembles the ordered question list for a practice session,
// mixing a few previously missed questions with fresh ones.
package pool

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/abhisek/quizmentor/internal/profile"
	"github.com/abhisek/quizmentor/internal/question"
)

// MaxReview caps the number of wrong-bank questions mixed into a
// regular session.
const MaxReview = 2

// Request describes the pool to build.
type Request struct {
	// Topic is the user's topic preference; "mixed" or empty means no filter.
	Topic string

	// WrongBank lists question IDs the user previously missed.
	WrongBank []string

	// Target is the desired pool size for non-premium users.
	Target int

	// Premium users receive the whole filtered set.
	Premium bool
}

// RequestFor derives a Request from a profile.
func RequestFor(p *profile.Profile, target int) Request {
	return Request{
		Topic:     p.TopicPreference,
		WrongBank: p.WrongBank,
		Target:    target,
		Premium:   p.Premium,
	}
}

// Builder selects session pools. It is safe for concurrent use.
type Builder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder returns a Builder drawing randomness from rng. A nil rng
// seeds a fresh PCG source.
func NewBuilder(rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Builder{rng: rng}
}

// Build returns the ordered pool for req. The result holds no duplicate
// IDs and is sorted by ascending difficulty. An empty input yields an
// empty pool; short pools are not errors.
func (b *Builder) Build(all []question.Question, req Request) []question.Question {
	b.mu.Lock()
	defer b.mu.Unlock()

	filtered := FilterByTopic(all, req.Topic)
	if len(filtered) == 0 {
		return []question.Question{}
	}

	if req.Premium {
		out := slices.Clone(filtered)
		b.shuffle(out)
		sortByDifficulty(out)
		return out
	}

	target := max(req.Target, 0)

	var review []question.Question
	if target > 0 {
		candidates := inWrongBank(filtered, req.WrongBank)
		b.shuffle(candidates)
		n := min(MaxReview, len(candidates), target)
		review = candidates[:n]
	}

	// Fresh questions never come from the wrong bank, so a pool holds
	// at most MaxReview banked questions even when that leaves it short.
	banked := make(map[string]bool, len(req.WrongBank))
	for _, id := range req.WrongBank {
		banked[id] = true
	}
	var rest []question.Question
	for _, q := range filtered {
		if !banked[q.ID] {
			rest = append(rest, q)
		}
	}
	b.shuffle(rest)
	fresh := rest[:min(target-len(review), len(rest))]

	out := make([]question.Question, 0, len(review)+len(fresh))
	out = append(out, review...)
	out = append(out, fresh...)
	sortByDifficulty(out)
	return out
}

// BuildReview returns a pool made only of wrong-bank questions. Premium
// users get every banked question in the topic; others are capped at
// req.Target.
func (b *Builder) BuildReview(all []question.Question, req Request) []question.Question {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := inWrongBank(FilterByTopic(all, req.Topic), req.WrongBank)
	if len(out) == 0 {
		out = inWrongBank(all, req.WrongBank)
	}
	b.shuffle(out)
	if !req.Premium && req.Target > 0 && len(out) > req.Target {
		out = out[:req.Target]
	}
	sortByDifficulty(out)
	if out == nil {
		out = []question.Question{}
	}
	return out
}

// FilterByTopic keeps questions matching topic. "mixed" and the empty
// string keep everything, and a topic that matches nothing falls back to
// the unfiltered set.
func FilterByTopic(all []question.Question, topic string) []question.Question {
	if topic == "" || topic == profile.TopicMixed {
		return slices.Clone(all)
	}
	var out []question.Question
	for _, q := range all {
		if q.MatchesTopic(topic) {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return slices.Clone(all)
	}
	return out
}

func inWrongBank(qs []question.Question, bank []string) []question.Question {
	if len(bank) == 0 {
		return nil
	}
	ids := make(map[string]bool, len(bank))
	for _, id := range bank {
		ids[id] = true
	}
	var out []question.Question
	for _, q := range qs {
		if ids[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

func (b *Builder) shuffle(qs []question.Question) {
	b.rng.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}

func sortByDifficulty(qs []question.Question) {
	slices.SortStableFunc(qs, func(a, b question.Question) int {
		return cmp.Compare(a.Difficulty, b.Difficulty)
	})
}
