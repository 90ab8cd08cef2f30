package helper

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Options bounds what a caller may ask for through ?per_page.
type Options struct {
	DefaultPerPage int
	MaxPerPage     int
	AllowAll       bool
	AllHardCap     int
}

var (
	DefaultOpts = Options{DefaultPerPage: 25, MaxPerPage: 200}
	AdminOpts   = Options{DefaultPerPage: 50, MaxPerPage: 500, AllowAll: true, AllHardCap: 5_000}
)

type Params struct {
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
	All       bool
}

func (p Params) Limit() int  { return p.PerPage }
func (p Params) Offset() int { return (p.Page - 1) * p.PerPage }

func queryFirst(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(c.Query(k)); v != "" {
			return v
		}
	}
	return ""
}

func normOrder(v string) (string, bool) {
	switch strings.ToLower(v) {
	case "asc":
		return "asc", true
	case "desc":
		return "desc", true
	}
	return "", false
}

// ParseFiber reads page, per_page (alias limit), sort_by and order (alias sort).
// per_page=all is honored only when opt.AllowAll, capped at AllHardCap.
func ParseFiber(c *fiber.Ctx, defaultSortBy, defaultSortOrder string, opt Options) Params {
	p := Params{Page: 1, PerPage: opt.DefaultPerPage, SortBy: defaultSortBy}

	if n, err := strconv.Atoi(queryFirst(c, "page")); err == nil && n > 1 {
		p.Page = n
	}

	switch raw := queryFirst(c, "per_page", "limit"); {
	case opt.AllowAll && strings.EqualFold(raw, "all"):
		p.All, p.Page, p.PerPage = true, 1, opt.MaxPerPage
		if opt.AllHardCap > 0 {
			p.PerPage = opt.AllHardCap
		}
	default:
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.PerPage = min(n, opt.MaxPerPage)
		}
	}

	if s := queryFirst(c, "sort_by"); s != "" {
		p.SortBy = s
	}
	if o, ok := normOrder(queryFirst(c, "order", "sort")); ok {
		p.SortOrder = o
	} else if o, ok := normOrder(defaultSortOrder); ok {
		p.SortOrder = o
	} else {
		p.SortOrder = "desc"
	}
	return p
}

// SafeOrderClause resolves SortBy through allowed (query key -> column) and returns
// "column DIR". Unknown keys fall back to defaultKey.
func (p Params) SafeOrderClause(allowed map[string]string, defaultKey string) (string, error) {
	col, ok := allowed[p.SortBy]
	if !ok {
		if col, ok = allowed[defaultKey]; !ok {
			return "", errors.New("no valid default sort key")
		}
	}
	if p.SortOrder == "asc" {
		return col + " ASC", nil
	}
	return col + " DESC", nil
}

type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	NextPage   *int  `json:"next_page,omitempty"`
	PrevPage   *int  `json:"prev_page,omitempty"`
	Count      int   `json:"count"`
}

func BuildMeta(total int64, p Params) Meta {
	m := Meta{Page: p.Page, PerPage: p.PerPage, Total: total}
	if total > 0 && p.PerPage > 0 {
		m.TotalPages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	if p.Page > 1 {
		prev := p.Page - 1
		m.HasPrev, m.PrevPage = true, &prev
	}
	if p.Page < m.TotalPages {
		next := p.Page + 1
		m.HasNext, m.NextPage = true, &next
	}
	return m
}
