package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// maxReviewBody bounds POST bodies.
const maxReviewBody = 64 << 10

// reviewRequest is the POST /api/books/{id}/reviews body.
type reviewRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) error {
	payload, err := s.reviews.ListBooks(r.Context())
	if err != nil {
		return err
	}
	writeRawJSON(w, http.StatusOK, payload)
	return nil
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) error {
	book, err := s.reviews.GetBook(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, book)
	return nil
}

func (s *Server) addReview(w http.ResponseWriter, r *http.Request) error {
	var req reviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReviewBody))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("invalid JSON body: " + err.Error())
	}

	rev, err := s.reviews.AddReview(r.Context(), mux.Vars(r)["id"], req.Text, req.Author)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, rev)
	return nil
}
