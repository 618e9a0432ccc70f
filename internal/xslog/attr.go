package xslog

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/garrettladley/fitmetrics/internal/version"
	"github.com/garrettladley/fitmetrics/internal/xhttp"
)

const (
	keyError = "error"
)

func Error(err error) slog.Attr {
	return slog.String(keyError, err.Error())
}

func RequestID(requestID string) slog.Attr {
	const requestIDKey = "request_id"
	return slog.String(requestIDKey, requestID)
}

func Stack() slog.Attr {
	const stackKey = "stack"
	return slog.String(stackKey, string(debug.Stack()))
}

func HTTPStatus(status int) slog.Attr {
	const statusKey = "status"
	return slog.Int(statusKey, status)
}

func RequestMethod(r *http.Request) slog.Attr {
	const methodKey = "method"
	return slog.String(methodKey, r.Method)
}

func RequestPath(r *http.Request) slog.Attr {
	const pathKey = "path"
	return slog.String(pathKey, r.URL.Path)
}

func IP(ip string) slog.Attr {
	const ipKey = "ip"
	return slog.String(ipKey, ip)
}

func RequestIP(r *http.Request) slog.Attr {
	return IP(xhttp.GetRequestIP(r))
}

func Version() slog.Attr {
	const versionKey = "version"
	return slog.String(versionKey, version.Get())
}

func AthleteID(id int64) slog.Attr {
	const athleteIDKey = "athlete_id"
	return slog.Int64(athleteIDKey, id)
}

func ActivityID(id int64) slog.Attr {
	const activityIDKey = "activity_id"
	return slog.Int64(activityIDKey, id)
}

func Count(count int) slog.Attr {
	const countKey = "count"
	return slog.Int(countKey, count)
}

func Page(page int) slog.Attr {
	const pageKey = "page"
	return slog.Int(pageKey, page)
}

func Days(days int) slog.Attr {
	const daysKey = "days"
	return slog.Int(daysKey, days)
}

func Since(t time.Time) slog.Attr {
	const sinceKey = "since"
	return slog.Time(sinceKey, t)
}

func Migration(name string) slog.Attr {
	const migrationKey = "migration"
	return slog.String(migrationKey, name)
}

func Path(path string) slog.Attr {
	const pathKey = "file"
	return slog.String(pathKey, path)
}
