package xhttp

import (
	"bytes"
	"net/http"
	"strconv"

	go_json "github.com/goccy/go-json"
)

// WriteJSON encodes data before touching w so an encoding failure still
// yields a clean 500 instead of a truncated body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := go_json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	SetHeaderContentTypeApplicationJSON(w)
	w.Header().Set(ContentLength, strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
