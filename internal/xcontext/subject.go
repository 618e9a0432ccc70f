package xcontext

import "context"

type subjectKey struct{}

// Subject records which athlete and activity a request acted on. Handlers
// fill it in after resolving path values so the access log can report them.
type Subject struct {
	AthleteID  int64
	ActivityID int64
}

func WithSubject(ctx context.Context) (context.Context, *Subject) {
	s := &Subject{}
	return context.WithValue(ctx, subjectKey{}, s), s
}

func GetSubject(ctx context.Context) (*Subject, bool) {
	s, ok := ctx.Value(subjectKey{}).(*Subject)
	return s, ok && s != nil
}

// SetAthleteID is a no-op when ctx carries no Subject.
func SetAthleteID(ctx context.Context, id int64) {
	if s, ok := GetSubject(ctx); ok {
		s.AthleteID = id
	}
}

// SetActivityID is a no-op when ctx carries no Subject.
func SetActivityID(ctx context.Context, id int64) {
	if s, ok := GetSubject(ctx); ok {
		s.ActivityID = id
	}
}
