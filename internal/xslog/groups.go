package xslog

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/garrettladley/fitmetrics/internal/xcontext"
)

const (
	groupRequest  = "request"
	groupResponse = "response"
	groupError    = "error"
	groupAthlete  = "athlete"
	groupActivity = "activity"
	groupBatch    = "batch"
)

const (
	keyID         = "id"
	keyHost       = "host"
	keyUserAgent  = "user_agent"
	keyQuery      = "query"
	keyDurationMS = "duration_ms"
	keyMessage    = "message"
	keyType       = "type"
	keyValue      = "value"
	keyFTP        = "ftp"
	keyStart      = "start"
	keyCalculated = "calculated"
	keySkipped    = "skipped"
	keyErrors     = "errors"
	keyTotal      = "total"
)

// RequestGroup describes r. The athlete and activity a handler resolved are
// included when the request carries an xcontext.Subject.
func RequestGroup(r *http.Request) slog.Attr {
	attrs := []slog.Attr{
		RequestMethod(r),
		RequestPath(r),
		RequestIP(r),
		slog.String(keyHost, r.Host),
		slog.String(keyUserAgent, r.UserAgent()),
	}
	if id, ok := xcontext.GetRequestID(r.Context()); ok {
		attrs = append(attrs, slog.String(keyID, id))
	}
	if r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String(keyQuery, r.URL.RawQuery))
	}
	if s, ok := xcontext.GetSubject(r.Context()); ok {
		if s.AthleteID != 0 {
			attrs = append(attrs, AthleteID(s.AthleteID))
		}
		if s.ActivityID != 0 {
			attrs = append(attrs, ActivityID(s.ActivityID))
		}
	}
	return slog.GroupAttrs(groupRequest, attrs...)
}

func ResponseGroup(status int, duration time.Duration) slog.Attr {
	return slog.Group(groupResponse,
		HTTPStatus(status),
		slog.Int64(keyDurationMS, duration.Milliseconds()),
	)
}

// AthleteGroup identifies an athlete together with the FTP in effect. A
// zero ftp is left out.
func AthleteGroup(athleteID int64, ftp int) slog.Attr {
	attrs := []slog.Attr{slog.Int64(keyID, athleteID)}
	if ftp > 0 {
		attrs = append(attrs, slog.Int(keyFTP, ftp))
	}
	return slog.GroupAttrs(groupAthlete, attrs...)
}

func ActivityGroup(activityID int64, kind string, start time.Time) slog.Attr {
	return slog.Group(groupActivity,
		slog.Int64(keyID, activityID),
		slog.String(keyType, kind),
		slog.String(keyStart, start.Format(time.DateOnly)),
	)
}

func BatchGroup(calculated, skipped, errors, total int) slog.Attr {
	return slog.Group(groupBatch,
		slog.Int(keyCalculated, calculated),
		slog.Int(keySkipped, skipped),
		slog.Int(keyErrors, errors),
		slog.Int(keyTotal, total),
	)
}

func ErrorGroup(err error) slog.Attr {
	if err == nil {
		return slog.Group(groupError)
	}
	return slog.Group(groupError,
		slog.String(keyMessage, err.Error()),
		slog.String(keyType, fmt.Sprintf("%T", err)),
	)
}

func ErrorGroupWithStack(err any) slog.Attr {
	return slog.Group(groupError,
		slog.Any(keyValue, err),
		slog.String(keyType, fmt.Sprintf("%T", err)),
		Stack(),
	)
}
