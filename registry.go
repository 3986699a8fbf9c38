package vgpage

import (
	"sort"
	"strings"
)

// Keys prefixes used by the flat template mapping produced by the page generator.
const (
	TitleKeyPrefix = "title/"
	BodyKeyPrefix  = "body/"
)

// PageRecord is the title fragment and body markup of a virtual page.
type PageRecord struct {
	Title string
	Body  string
}

// Registry maps page identifiers to their records.  It is built once
// and is read-only afterward.
type Registry struct {
	pages map[string]PageRecord
}

// NewRegistry returns a Registry holding a copy of pages.
func NewRegistry(pages map[string]PageRecord) *Registry {
	m := make(map[string]PageRecord, len(pages))
	for id, rec := range pages {
		m[id] = rec
	}
	return &Registry{pages: m}
}

// NewRegistryFromFlat builds a Registry from the flat mapping of the form
// {"title/<id>": ..., "body/<id>": ...}.  Identifiers that are missing either
// key are left out, so they resolve as unknown.  Keys with any other prefix are ignored.
func NewRegistryFromFlat(flat map[string]string) *Registry {
	m := make(map[string]PageRecord)
	for k, title := range flat {
		if !strings.HasPrefix(k, TitleKeyPrefix) {
			continue
		}
		id := k[len(TitleKeyPrefix):]
		body, ok := flat[BodyKeyPrefix+id]
		if !ok {
			continue
		}
		m[id] = PageRecord{Title: title, Body: body}
	}
	return &Registry{pages: m}
}

// Lookup returns the record for id and true, or false if id is unknown.
func (r *Registry) Lookup(id string) (PageRecord, bool) {
	if r == nil {
		return PageRecord{}, false
	}
	rec, ok := r.pages[id]
	return rec, ok
}

// Len returns the number of registered pages.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.pages)
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ret := make([]string, 0, len(r.pages))
	for id := range r.pages {
		ret = append(ret, id)
	}
	sort.Strings(ret)
	return ret
}

// Flat returns the registry as the flat title/body mapping.
func (r *Registry) Flat() map[string]string {
	if r == nil {
		return nil
	}
	ret := make(map[string]string, len(r.pages)*2)
	for id, rec := range r.pages {
		ret[TitleKeyPrefix+id] = rec.Title
		ret[BodyKeyPrefix+id] = rec.Body
	}
	return ret
}
