package server

import (
	"encoding/json"
	"net/http"

	"chaingraphdb/core"
)

// envelope is the uniform JSON response shape: exactly one of Data/Error
// is populated.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var coreErr *core.Error
	if as, ok := err.(*core.Error); ok {
		coreErr = as
		switch coreErr.Kind {
		case core.KindNotFound:
			status = http.StatusNotFound
		case core.KindAlreadyExists:
			status = http.StatusConflict
		case core.KindParseError, core.KindQueryError, core.KindInvalidAddress, core.KindInvalidTxHash:
			status = http.StatusBadRequest
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: err.Error()})
}
