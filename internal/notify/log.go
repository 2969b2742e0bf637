package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier records presentations at debug level.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (l LogNotifier) PresentQuestion(_ context.Context, v QuestionView) error {
	l.Log.WithFields(logrus.Fields{
		"user_id":     v.UserID,
		"session_id":  v.SessionID,
		"index":       v.Index,
		"question_id": v.Question.ID,
	}).Debug("present question")
	return nil
}

func (l LogNotifier) PresentResult(_ context.Context, v ResultView) error {
	l.Log.WithFields(logrus.Fields{
		"user_id":    v.UserID,
		"session_id": v.SessionID,
		"score":      v.Score,
		"total":      v.Total,
		"tier":       v.Tier,
	}).Debug("present result")
	return nil
}

func (l LogNotifier) PresentNotice(_ context.Context, n Notice) error {
	l.Log.WithFields(logrus.Fields{"user_id": n.UserID, "key": n.Key}).Debug("present notice")
	return nil
}
