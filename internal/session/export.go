package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lmoreno/corsa-logbook/internal/domain"
)

// Export serializes the trips matching the filter as a pretty-printed JSON
// array and returns the bytes together with the download filename for
// today, e.g. "viajes-2026-08-28.json". An empty filtered set yields a
// valid empty-array document.
//
// This is a pure transformation of cached state; no backend call is made.
func (m *Manager) Export(f domain.Filter) ([]byte, string, error) {
	trips := m.Filtered(f)
	data, err := json.MarshalIndent(trips, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("session.Manager.Export: %w", err)
	}
	name := "viajes-" + time.Now().UTC().Format("2006-01-02") + ".json"
	return data, name, nil
}
