package fakestore

import "sort"

// change is a write that reads do not observe yet. A nil body is a delete.
type change struct {
	body []byte
	lag  int
}

type record struct {
	visible []byte
	pending *change
}

// table keeps one resource kind. Writes are authoritative at once; reads of
// a key observe a write only after lag earlier reads of that key.
type table struct {
	records map[string]*record
}

func newTable() *table {
	return &table{records: map[string]*record{}}
}

// read returns the body a fetch observes, or nil when absent.
func (t *table) read(key string) []byte {
	r, ok := t.records[key]
	if !ok {
		return nil
	}

	if r.pending != nil {
		if r.pending.lag > 0 {
			r.pending.lag--
			return r.visible
		}

		r.visible = r.pending.body
		r.pending = nil
	}

	return r.visible
}

// latest returns the authoritative body, or nil when absent.
func (t *table) latest(key string) []byte {
	r, ok := t.records[key]
	if !ok {
		return nil
	}

	if r.pending != nil {
		return r.pending.body
	}

	return r.visible
}

func (t *table) write(key string, body []byte, lag int) {
	r, ok := t.records[key]
	if !ok {
		r = &record{}
		t.records[key] = r
	}

	if lag <= 0 {
		r.visible = body
		r.pending = nil

		return
	}

	r.pending = &change{body: body, lag: lag}
}

// visible returns every body list endpoints observe, ordered by key.
func (t *table) visible() [][]byte {
	keys := make([]string, 0, len(t.records))
	for key, r := range t.records {
		if r.visible != nil {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	bodies := make([][]byte, 0, len(keys))
	for _, key := range keys {
		bodies = append(bodies, t.records[key].visible)
	}

	return bodies
}
