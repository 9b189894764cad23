package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"quizapp"

	"go.uber.org/zap"
)

const sessionName = "quiz-session"

// choiceRow is one selectable answer on the quiz page
type choiceRow struct {
	Key      string
	Text     string
	Selected bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	var flashes []string
	for _, f := range session.Flashes() {
		if msg, ok := f.(string); ok {
			flashes = append(flashes, msg)
		}
	}
	if len(flashes) > 0 {
		if err := session.Save(r, w); err != nil {
			quizapp.Logger().Error("Session save error", zap.Error(err))
		}
	}

	snap := s.ctrl.Snapshot()
	data := map[string]interface{}{
		"Snap":    snap,
		"Flashes": flashes,
	}
	if snap.Question != nil {
		var rows []choiceRow
		for _, key := range snap.Question.Keys() {
			rows = append(rows, choiceRow{Key: key, Text: snap.Question.Choices[key], Selected: key == snap.Selected})
		}
		data["Choices"] = rows
	}

	name := string(snap.View)
	if err := s.templates[name].ExecuteTemplate(w, "base.html", data); err != nil {
		quizapp.Logger().Error("Template error", zap.String("view", name), zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.ctrl.StartQuiz()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	index, ok := s.parseAction(w, r)
	if !ok {
		return
	}
	s.finishAction(w, r, index, s.ctrl.SelectAnswerAt(index, r.FormValue("choice")))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	index, ok := s.parseAction(w, r)
	if !ok {
		return
	}
	s.finishAction(w, r, index, s.ctrl.AdvanceFrom(index))
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	index, ok := s.parseAction(w, r)
	if !ok {
		return
	}
	s.finishAction(w, r, index, s.ctrl.RetreatFrom(index))
}

// parseAction checks the method and reads the question index the form was rendered for
func (s *Server) parseAction(w http.ResponseWriter, r *http.Request) (int, bool) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return 0, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return 0, false
	}
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil || index < 0 {
		http.Error(w, "Invalid question index", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

func (s *Server) finishAction(w http.ResponseWriter, r *http.Request, index int, err error) {
	switch {
	case err == nil:
	case errors.Is(err, quizapp.ErrStale):
		quizapp.VerboseLog("Rejected stale action for question %d", index+1)
		session, _ := s.store.Get(r, sessionName)
		session.AddFlash(staleMessage(s.ctrl.Snapshot().View, index))
		if err := session.Save(r, w); err != nil {
			quizapp.Logger().Error("Session save error", zap.Error(err))
		}
	case errors.Is(err, quizapp.ErrUnknownChoice):
		http.Error(w, "Invalid answer", http.StatusBadRequest)
		return
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// staleMessage explains why an action for question index was not applied
func staleMessage(view quizapp.View, index int) string {
	switch view {
	case quizapp.ViewResult:
		return "The quiz has already finished"
	case quizapp.ViewHome:
		return "No quiz is in progress"
	default:
		return fmt.Sprintf("Time ran out on question %d", index+1)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.ctrl.Snapshot())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	initial, err := json.Marshal(s.ctrl.Snapshot())
	if err != nil {
		http.Error(w, "Failed to encode state", http.StatusInternalServerError)
		return
	}
	s.hub.ServeWS(w, r, initial)
}
