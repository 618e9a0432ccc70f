package strava

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/garrettladley/fitmetrics/internal/xslog"
)

const (
	DefaultPerPage = 30
	MaxPerPage     = 200
)

type ListParams struct {
	After   *time.Time
	Before  *time.Time
	Page    int
	PerPage int
}

func (p *ListParams) query() url.Values {
	q := url.Values{}
	if p == nil {
		return q
	}
	if p.After != nil {
		q.Set("after", strconv.FormatInt(p.After.Unix(), 10))
	}
	if p.Before != nil {
		q.Set("before", strconv.FormatInt(p.Before.Unix(), 10))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(min(p.PerPage, MaxPerPage)))
	}
	return q
}

type ActivityService interface {
	List(ctx context.Context, params *ListParams) ([]Activity, error)
	All(ctx context.Context, params *ListParams) iter.Seq2[Activity, error]
}

type activityService struct {
	client *Client
}

func (s *activityService) List(ctx context.Context, params *ListParams) ([]Activity, error) {
	var activities []Activity
	if err := s.client.do(ctx, http.MethodGet, "/athlete/activities", params.query(), &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// All pages through the activity list until Strava returns a short page.
func (s *activityService) All(ctx context.Context, params *ListParams) iter.Seq2[Activity, error] {
	return func(yield func(Activity, error) bool) {
		p := ListParams{PerPage: MaxPerPage, Page: 1}
		if params != nil {
			p = *params
			if p.PerPage <= 0 {
				p.PerPage = MaxPerPage
			}
			if p.Page <= 0 {
				p.Page = 1
			}
		}

		for {
			page, err := s.List(ctx, &p)
			if err != nil {
				yield(Activity{}, err)
				return
			}
			s.client.logger.DebugContext(ctx, "fetched activity page",
				xslog.Page(p.Page),
				xslog.Count(len(page)),
			)
			for _, a := range page {
				if !yield(a, nil) {
					return
				}
			}
			if len(page) < min(p.PerPage, MaxPerPage) {
				return
			}
			p.Page++
		}
	}
}
