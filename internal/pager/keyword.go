package pager

import (
	"context"
	"strings"
)

// FetchFiltered returns up to req.Lines entries containing keyword
// (case-sensitive, matched against Entry.Text). Pages are read toward the
// start of the file until enough matches are found, the file is exhausted,
// or the page cap is reached; running out of pages is not an error.
//
// With an empty keyword it is the same as Fetch.
func (p *Paginator) FetchFiltered(ctx context.Context, req Request, keyword string) (*Page, error) {
	if keyword == "" {
		return p.Fetch(ctx, req)
	}
	req = p.normalize(req)

	result := &Page{KeywordActive: true, Keyword: keyword}

	h, err := p.open(ctx)
	if err != nil {
		return result, err
	}
	defer func() { _ = h.Close() }()

	want := req.Lines
	cur := req
	for {
		if result.Pages >= p.opts.MaxPages {
			p.log.WithField("keyword", keyword).Warn("stopped after %d pages with %d of %d matches", result.Pages, len(result.Entries), want)
			break
		}
		page, err := p.fetch(h, cur)
		if err != nil {
			return result, err
		}

		if result.Pages == 0 {
			result.Offset = page.Offset
		} else {
			result.Offset.Start = page.Offset.Start
		}
		result.Size = page.Size
		result.Pages++
		result.Reads += page.Reads

		for _, e := range page.Entries {
			if strings.Contains(e.Text(), keyword) {
				result.Entries = append(result.Entries, e)
			}
		}

		if len(result.Entries) >= want {
			break
		}
		next := page.NextSeek()
		if next == 0 {
			break
		}
		// A page that did not move the start closer to 0 would repeat forever.
		if cur.Seek < 0 && next <= cur.Seek {
			break
		}

		cur.Seek = next
		cur.Lines = want - len(result.Entries)
	}

	return result, nil
}
