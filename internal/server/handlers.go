package server

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmurray2011/leaf/internal/local"
	"github.com/jmurray2011/leaf/internal/logdir"
	"github.com/jmurray2011/leaf/internal/logging"
	"github.com/jmurray2011/leaf/internal/output"
	"github.com/jmurray2011/leaf/internal/pager"
)

const (
	codeInvalidRequest = "E_INVALID_REQUEST"
	codeOutsideDir     = "E_OUTSIDE_LOG_DIR"
	codeDirNotFound    = "E_DIR_NOT_FOUND"
	codeInternalError  = "E_INTERNAL_ERROR"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func abortWithError(c *gin.Context, status int, code string, err error) {
	c.Abort()
	_ = c.Error(err)
	c.PureJSON(status, apiError{Code: code, Message: err.Error()})
}

type handler struct {
	dir  *logdir.Dir
	opts pager.Options
	log  logging.Logger
}

type filesQuery struct {
	Dir   string `form:"dir"`
	Match string `form:"match"`
}

type logsQuery struct {
	Offset  int64  `form:"offset"`
	Lines   int    `form:"lines" binding:"omitempty,min=0,max=1000"`
	Buffer  int    `form:"buffer" binding:"omitempty,min=0,max=1048576"`
	Keyword string `form:"keyword"`
}

type tailQuery struct {
	Offset *int64 `form:"offset"`
}

type tailResponse struct {
	Entries []pager.Entry `json:"entries"`
	Offset  int64         `json:"offset"`
}

// files lists log files in a directory under the base, newest first, with
// the newest entry of each.
func (h *handler) files(c *gin.Context) {
	var q filesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, err)
		return
	}

	d, err := h.dir.Sub(q.Dir)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, codeOutsideDir, err)
		return
	}
	files, err := d.Files(q.Match)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			abortWithError(c, http.StatusNotFound, codeDirNotFound, err)
			return
		}
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, err)
		return
	}
	dirs, err := d.Dirs()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, codeInternalError, err)
		return
	}

	summaries, err := logdir.Summarize(c.Request.Context(), files, logdir.NewestEntry(h.quiet()), 0)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, codeInternalError, err)
		return
	}
	c.PureJSON(http.StatusOK, output.NewListing(q.Dir, summaries, dirs))
}

// logs returns one page of a file. A file that cannot be opened yields an
// empty page, not an error.
func (h *handler) logs(c *gin.Context) {
	var q logsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, err)
		return
	}
	path, ok := h.resolve(c)
	if !ok {
		return
	}

	p := pager.New(local.NewSource(path), h.opts)
	req := pager.Request{Seek: q.Offset, Lines: q.Lines, BufferSize: q.Buffer}

	var page *pager.Page
	var err error
	if q.Keyword != "" {
		page, err = p.FetchFiltered(c.Request.Context(), req, q.Keyword)
	} else {
		page, err = p.Fetch(c.Request.Context(), req)
	}
	if err != nil && !errors.Is(err, pager.ErrSourceUnavailable) {
		abortWithError(c, http.StatusInternalServerError, codeInternalError, err)
		return
	}
	if err != nil {
		h.log.Debug("serving empty page: %v", err)
	}
	c.PureJSON(http.StatusOK, output.NewPageView(page, ""))
}

// tail returns entries appended after offset. Without an offset it returns
// nothing and the current end of the file, which the client polls from.
func (h *handler) tail(c *gin.Context) {
	var q tailQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, err)
		return
	}
	path, ok := h.resolve(c)
	if !ok {
		return
	}

	offset := int64(-1)
	if q.Offset != nil {
		offset = *q.Offset
	}

	p := pager.New(local.NewSource(path), h.opts)
	entries, pos, err := p.Tail(c.Request.Context(), offset)
	if err != nil && !errors.Is(err, pager.ErrSourceUnavailable) {
		abortWithError(c, http.StatusInternalServerError, codeInternalError, err)
		return
	}
	if err != nil {
		h.log.Debug("tail: %v", err)
	}
	if entries == nil {
		entries = []pager.Entry{}
	}
	c.PureJSON(http.StatusOK, tailResponse{Entries: entries, Offset: pos})
}

// resolve maps the file path parameter onto the log directory. An empty
// parameter selects the most recently modified file.
func (h *handler) resolve(c *gin.Context) (string, bool) {
	rel := strings.TrimPrefix(c.Param("file"), "/")
	if rel == "" {
		latest, err := h.dir.Latest()
		if err != nil {
			// The pager reports a directory as unavailable.
			return h.dir.Base, true
		}
		return latest.Path, true
	}

	path, err := h.dir.Resolve(rel)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, codeOutsideDir, err)
		return "", false
	}
	return path, true
}

// quiet returns the pager options with logging off, for directory summaries.
func (h *handler) quiet() pager.Options {
	opts := h.opts
	opts.Logger = logging.NopLogger{}
	return opts
}
