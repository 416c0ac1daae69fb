package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"

	"github.com/mind-engage/mindengage-marker/internal/batch"
	"github.com/mind-engage/mindengage-marker/internal/marking"
)

type markReq struct {
	Document marking.Document `json:"document"`
	Memo     string           `json:"memo,omitempty"`
}

type markResp struct {
	Report   marking.Report `json:"report"`
	Markdown string         `json:"markdown"`
}

// POST /mark
func MarkHandler(local *marking.LocalEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req markReq
		if !decode(w, r, &req) {
			return
		}
		rep, err := local.Mark(req.Document, req.Memo)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, markResp{Report: rep, Markdown: marking.Render(rep)})
	}
}

// POST /mark/upload  multipart: file, memo?, student?, assignment?
func UploadMarkHandler(local *marking.LocalEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
			return
		}
		mt := mimetype.Detect(b)
		if !strings.HasPrefix(mt.String(), "text/") {
			http.Error(w, "unsupported file type "+mt.String()+": upload plain text", http.StatusUnsupportedMediaType)
			return
		}

		doc := marking.Document{
			Text:        string(b),
			StudentName: r.FormValue("student"),
			Assignment:  lo.CoalesceOrEmpty(r.FormValue("assignment"), hdr.Filename),
		}
		rep, err := local.Mark(doc, r.FormValue("memo"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, markResp{Report: rep, Markdown: marking.Render(rep)})
	}
}

// POST /mark/remote
func RemoteMarkHandler(remote *marking.RemoteEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if remote == nil {
			http.Error(w, "remote marking is not configured", http.StatusServiceUnavailable)
			return
		}
		var req markReq
		if !decode(w, r, &req) {
			return
		}
		rep, err := remote.Mark(r.Context(), req.Document, req.Memo)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

type planReq struct {
	Documents []marking.Document `json:"documents"`
}

// POST /batches/plan
func PlanHandler(advisor batch.Advisor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planReq
		if !decode(w, r, &req) {
			return
		}
		plan := advisor.Recommend(lo.Map(req.Documents, func(d marking.Document, _ int) string { return d.Text }))
		writeJSON(w, http.StatusOK, plan)
	}
}
