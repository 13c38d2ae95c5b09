package filter

import (
	"net/url"
	"strconv"
	"strings"
)

// Filter is the active task-listing criteria. The URL query string is its
// durable representation; stores treat it as an input and never own it.
type Filter struct {
	Fullname string
	Company  string
	Project  string
	HourType string
	Status   string
	DateFrom string
	DateTo   string
	Page     int
}

// IsEmpty reports whether no criteria are set. Page alone does not make a
// filter non-empty: a bare page number belongs to the unfiltered view.
func (f Filter) IsEmpty() bool {
	return f.Fullname == "" && f.Company == "" && f.Project == "" &&
		f.HourType == "" && f.Status == "" && f.DateFrom == "" && f.DateTo == ""
}

// Values encodes the filter to query parameters. A date range encodes as
// "YYYY-MM-DD YYYY-MM-DD" in the single date key; a lone DateFrom encodes as
// a single date. Empty fields are omitted.
func (f Filter) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("fullname", f.Fullname)
	set("company", f.Company)
	set("project", f.Project)
	set("hourtype", f.HourType)
	set("status", f.Status)
	switch {
	case f.DateFrom != "" && f.DateTo != "":
		v.Set("date", f.DateFrom+" "+f.DateTo)
	case f.DateFrom != "":
		v.Set("date", f.DateFrom)
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	return v
}

// Parse decodes query parameters back into a Filter. It is the inverse of
// Values for every filter Values can produce.
func Parse(v url.Values) Filter {
	f := Filter{
		Fullname: v.Get("fullname"),
		Company:  v.Get("company"),
		Project:  v.Get("project"),
		HourType: v.Get("hourtype"),
		Status:   v.Get("status"),
	}
	if date := v.Get("date"); date != "" {
		if from, to, ok := strings.Cut(date, " "); ok {
			f.DateFrom, f.DateTo = from, to
		} else {
			f.DateFrom = date
		}
	}
	if page, err := strconv.Atoi(v.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	return f
}

// Fingerprint is a stable cache key for the criteria, page excluded. Two
// filters selecting the same rows share a fingerprint.
func (f Filter) Fingerprint() string {
	g := f
	g.Page = 0
	return g.Values().Encode()
}
