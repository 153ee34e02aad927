package output

import (
	"encoding/csv"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmurray2011/leaf/internal/logdir"
)

// FileView is one row of a directory listing.
type FileView struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	SizeText string    `json:"size_human"`
	Modified time.Time `json:"modified"`
	Level    string    `json:"level,omitempty"`
	Newest   string    `json:"newest,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Listing is a directory listing: files newest first, then subdirectories.
type Listing struct {
	Dir   string     `json:"dir"`
	Files []FileView `json:"files"`
	Dirs  []string   `json:"dirs"`
}

// NewListing builds a listing from summarized files.
func NewListing(dir string, summaries []logdir.Summary, dirs []string) Listing {
	l := Listing{Dir: dir, Files: make([]FileView, 0, len(summaries)), Dirs: dirs}
	if l.Dirs == nil {
		l.Dirs = []string{}
	}
	for _, s := range summaries {
		v := FileView{
			Name:     s.Name,
			Size:     s.Size,
			SizeText: humanize.Bytes(uint64(s.Size)),
			Modified: s.ModTime,
		}
		if s.Newest != nil {
			v.Level = s.Newest.Level
			v.Newest = s.Newest.Timestamp
		}
		if s.Err != nil {
			v.Error = s.Err.Error()
		}
		l.Files = append(l.Files, v)
	}
	return l
}

// FormatListing outputs a directory listing in the configured format.
func (f *Formatter) FormatListing(l Listing) error {
	switch f.format {
	case FormatJSON:
		return f.encodeJSON(l)
	case FormatCSV:
		return f.formatListingCSV(l)
	default:
		return f.formatListingText(l)
	}
}

func (f *Formatter) formatListingText(l Listing) error {
	r := f.renderer()
	if len(l.Files) == 0 && len(l.Dirs) == 0 {
		r.Info("No log files in %s", l.Dir)
		return nil
	}

	if len(l.Files) > 0 {
		rows := make([][]string, 0, len(l.Files))
		for _, v := range l.Files {
			newest := v.Level
			if v.Newest != "" {
				newest += " " + v.Newest
			}
			if v.Error != "" {
				newest = "unreadable"
			}
			rows = append(rows, []string{v.Name, v.SizeText, humanize.Time(v.Modified), newest})
		}
		r.Table([]string{"FILE", "SIZE", "MODIFIED", "NEWEST ENTRY"}, rows)
	}

	if len(l.Dirs) > 0 {
		r.Section("Directories")
		for _, d := range l.Dirs {
			r.Info("  %s/", d)
		}
	}
	return nil
}

func (f *Formatter) formatListingCSV(l Listing) error {
	writer := csv.NewWriter(f.writer)

	if err := writer.Write([]string{"name", "size", "modified", "level", "newest"}); err != nil {
		return err
	}
	for _, v := range l.Files {
		record := []string{v.Name, strconv.FormatInt(v.Size, 10), v.Modified.UTC().Format(time.RFC3339), v.Level, v.Newest}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatSources outputs configured source aliases.
func (f *Formatter) FormatSources(aliases map[string]string, defaultAlias string, names []string) error {
	switch f.format {
	case FormatJSON:
		type jsonAlias struct {
			Name    string `json:"name"`
			URI     string `json:"uri"`
			Default bool   `json:"default,omitempty"`
		}
		out := make([]jsonAlias, 0, len(names))
		for _, n := range names {
			out = append(out, jsonAlias{Name: n, URI: aliases[n], Default: n == defaultAlias})
		}
		return f.encodeJSON(out)
	case FormatCSV:
		writer := csv.NewWriter(f.writer)
		if err := writer.Write([]string{"name", "uri", "default"}); err != nil {
			return err
		}
		for _, n := range names {
			if err := writer.Write([]string{n, aliases[n], strconv.FormatBool(n == defaultAlias)}); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	}

	r := f.renderer()
	if len(names) == 0 {
		r.Info("No sources configured. Add one with: leaf sources add <name> <uri>")
		return nil
	}
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		name := "@" + n
		if n == defaultAlias {
			name += " (default)"
		}
		rows = append(rows, []string{name, aliases[n]})
	}
	r.Table([]string{"ALIAS", "URI"}, rows)
	return nil
}
