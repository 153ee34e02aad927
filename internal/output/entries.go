package output

import (
	"encoding/csv"

	"github.com/jmurray2011/leaf/internal/pager"
	"github.com/jmurray2011/leaf/internal/source"
)

// PageView is the serialized form of a page, shared by the CLI's JSON output
// and the HTTP API. Prev and Next are the seeks for the neighbouring pages; 0
// means there is none. The cursor fields are filled only when the page was
// read from a known URI.
type PageView struct {
	Entries       []pager.Entry `json:"entries"`
	Offset        pager.Offset  `json:"offset"`
	Size          int64         `json:"size"`
	Prev          int64         `json:"prev"`
	Next          int64         `json:"next"`
	PrevCursor    string        `json:"prev_cursor,omitempty"`
	NextCursor    string        `json:"next_cursor,omitempty"`
	KeywordActive bool          `json:"keyword_active"`
	Keyword       string        `json:"keyword,omitempty"`
}

// NewPageView builds the view of page. uri may be empty.
func NewPageView(page *pager.Page, uri string) PageView {
	v := PageView{Entries: []pager.Entry{}}
	if page == nil {
		return v
	}
	if page.Entries != nil {
		v.Entries = page.Entries
	}
	v.Offset = page.Offset
	v.Size = page.Size
	v.Prev = page.PrevSeek()
	v.Next = page.NextSeek()
	v.KeywordActive = page.KeywordActive
	v.Keyword = page.Keyword
	if uri != "" {
		if page.HasPrev() {
			v.PrevCursor = source.MakeCursor(uri, v.Prev)
		}
		if page.HasNext() {
			v.NextCursor = source.MakeCursor(uri, v.Next)
		}
	}
	return v
}

// FormatPage writes a page and, in text mode, the cursors of its neighbours.
// Prev reads toward the end of the file (newer entries) and next toward the
// start (older entries).
func (f *Formatter) FormatPage(page *pager.Page, uri string) error {
	view := NewPageView(page, uri)
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(view)
	case FormatCSV:
		return f.formatEntriesCSV(view.Entries)
	}

	if err := f.formatEntriesText(view.Entries); err != nil {
		return err
	}
	r := f.renderer()
	if view.KeywordActive {
		r.Newline()
		r.Info("Filtered by %q over %d page(s); paging is disabled while a keyword is active.", view.Keyword, page.Pages)
		return nil
	}
	if view.PrevCursor == "" && view.NextCursor == "" {
		return nil
	}
	r.Newline()
	if view.PrevCursor != "" {
		r.Cursor("prev (newer)", view.PrevCursor)
	}
	if view.NextCursor != "" {
		r.Cursor("next (older)", view.NextCursor)
	}
	return nil
}

// FormatEntries outputs entries in the configured format.
func (f *Formatter) FormatEntries(entries []pager.Entry) error {
	if entries == nil {
		entries = []pager.Entry{}
	}
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(entries)
	case FormatCSV:
		return f.formatEntriesCSV(entries)
	default:
		return f.formatEntriesText(entries)
	}
}

func (f *Formatter) formatEntriesText(entries []pager.Entry) error {
	r := f.renderer()
	if len(entries) == 0 {
		r.NoResults()
		return nil
	}
	for i, e := range entries {
		if i > 0 {
			r.Newline()
		}
		r.Entry(e)
	}
	return nil
}

func (f *Formatter) formatEntriesCSV(entries []pager.Entry) error {
	writer := csv.NewWriter(f.writer)

	if err := writer.Write([]string{"timestamp", "environment", "level", "message", "trace"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.Timestamp, e.Environment, e.Level, e.Message, e.Trace}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
