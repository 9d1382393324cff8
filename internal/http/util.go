package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errEmptyBody = errors.New("empty request body")

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(body, out)
}

// pathID extracts the int64 that follows prefix in path, e.g. the {id} of
// /api/v1/postrojenja/{id}/polja. rest is whatever follows the id.
func pathID(path, prefix string) (id int64, rest string, ok bool) {
	tail := strings.TrimPrefix(path, prefix)
	if tail == path {
		return 0, "", false
	}
	seg, rest, _ := strings.Cut(tail, "/")
	id, err := strconv.ParseInt(seg, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, rest, true
}
