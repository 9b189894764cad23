package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizapp"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	ctrl      *quizapp.Controller
	store     *sessions.CookieStore
	templates map[string]*template.Template
	hub       *Hub
	metrics   *Metrics
	registry  *prometheus.Registry
}

func main() {
	configDir := flag.String("config", ".", "Directory containing quizapp.yaml")
	flag.Parse()

	cfg, err := LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := quizapp.InitLogger(quizapp.LogOptions{Verbose: cfg.Log.Verbose, File: cfg.Log.File})
	defer logger.Sync()

	bank, err := quizapp.OpenBank(quizapp.BankSource{File: cfg.Quiz.Bank, DB: cfg.Quiz.DB, QuizID: cfg.Quiz.QuizID})
	if err != nil {
		logger.Fatal("Failed to load question bank", zap.Error(err))
	}

	ctrl := quizapp.NewController(bank, quizapp.WithQuestionSeconds(cfg.Quiz.QuestionSeconds))
	defer ctrl.Close()

	sessionKey := []byte(cfg.Server.SessionKey)
	if len(sessionKey) == 0 {
		sessionKey = securecookie.GenerateRandomKey(32)
	}

	server, err := NewServer(ctrl, sessionKey, cfg.Server.SecureCookies)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port), zap.Int("questions", bank.Len()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}

// NewServer wires the controller to templates, the websocket hub and metrics.
// secureCookies must only be set when the app is served over HTTPS.
func NewServer(ctrl *quizapp.Controller, sessionKey []byte, secureCookies bool) (*Server, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
	}

	templates := make(map[string]*template.Template)
	for _, view := range []quizapp.View{quizapp.ViewHome, quizapp.ViewQuiz, quizapp.ViewResult} {
		name := string(view)
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		templates[name] = tmpl
	}

	store := sessions.NewCookieStore(sessionKey)
	store.Options.Secure = secureCookies
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	registry := prometheus.NewRegistry()
	hub := NewHub()
	s := &Server{
		ctrl:      ctrl,
		store:     store,
		templates: templates,
		hub:       hub,
		metrics:   NewMetrics(registry, hub.Count),
		registry:  registry,
	}

	ctrl.OnChange(s.publish)
	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/answer", s.handleAnswer)
	mux.HandleFunc("/next", s.handleNext)
	mux.HandleFunc("/previous", s.handlePrevious)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// publish runs on every controller change
func (s *Server) publish(snap quizapp.Snapshot) {
	s.metrics.Observe(snap)

	data, err := json.Marshal(snap)
	if err != nil {
		quizapp.Logger().Error("Failed to marshal snapshot", zap.Error(err))
		return
	}
	s.hub.Broadcast(data)
}
