package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/meostore/showcase-proxy/pkg/enka"
	"github.com/meostore/showcase-proxy/pkg/idv"
	"github.com/meostore/showcase-proxy/pkg/keyspace"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "showcase proxy is running",
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	fmt.Fprint(w, "pong")
}

// handleEnka classifies the UID first, then serves the showcase.
func (s *Server) handleEnka(w http.ResponseWriter, r *http.Request) {
	uid, err := pathID(r, "uid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid uid")
		return
	}

	game, ok := keyspace.DetectGame(uid)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown uid format")
		return
	}

	s.serveFetch(w, r, game, uid)
}

// handleGame serves /{game}/{uid} for the fixed showcase tags.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	game := keyspace.Game(mux.Vars(r)["game"])
	if !keyspace.IsShowcase(game) {
		writeError(w, http.StatusBadRequest, "unknown game tag")
		return
	}

	uid, err := pathID(r, "uid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid uid")
		return
	}

	s.serveFetch(w, r, game, uid)
}

func (s *Server) handleIDV(w http.ResponseWriter, r *http.Request) {
	roleID, err := pathID(r, "roleid")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid roleid")
		return
	}

	s.serveFetch(w, r, keyspace.IdentityV, roleID)
}

// serveFetch runs the orchestrator and maps its outcome to a response.
func (s *Server) serveFetch(w http.ResponseWriter, r *http.Request, game keyspace.Game, id int64) {
	data, status, err := s.coalescer.Fetch(r.Context(), game, id)
	if err != nil {
		s.writeFetchError(w, game, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", strings.ToUpper(string(status)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeFetchError maps upstream failures to status codes. Vendor HTTP errors
// are forwarded with the vendor's status code and raw body, not masked.
func (s *Server) writeFetchError(w http.ResponseWriter, game keyspace.Game, id int64, err error) {
	var vendorErr *idv.StatusError
	if errors.As(err, &vendorErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(vendorErr.StatusCode)
		w.Write(vendorErr.Body)
		return
	}

	s.logger.Error().Err(err).
		Str("keyspace", string(game)).
		Int64("id", id).
		Msg("Fetch failed with no fallback")

	switch {
	case errors.Is(err, enka.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "upstream timeout")
	case game == keyspace.IdentityV:
		writeError(w, http.StatusBadGateway, "vendor request failed")
	default:
		var apiErr *enka.APIError
		if errors.As(err, &apiErr) {
			writeError(w, http.StatusInternalServerError,
				fmt.Sprintf("upstream returned status %d", apiErr.StatusCode))
			return
		}
		writeError(w, http.StatusInternalServerError, "upstream request failed")
	}
}

// pathID parses a numeric path variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
