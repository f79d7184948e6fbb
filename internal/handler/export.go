// GET /export offers the currently filtered trip set as a JSON download.
// The export is a pure transformation of cached state; nothing is asked of
// the backend.
package handler

import (
	"net/http"
	"strconv"
)

// handleExport handles GET /export.
// The filter comes from the same query parameters as the trips page, so the
// download always matches what the visitor is looking at. An empty filtered
// set downloads as a valid empty array.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r.URL.Query())

	data, filename, err := s.trips.Export(f)
	if err != nil {
		s.log.ErrorContext(r.Context(), "export failed", "error", err)
		setFlash(w, "error", userMessage(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
