package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"intervuex-backend-go/internal/auth"
	"intervuex-backend-go/internal/config"
	"intervuex-backend-go/internal/interview"
	"intervuex-backend-go/internal/memory"
	"intervuex-backend-go/internal/proctor"
	"intervuex-backend-go/internal/resumes"
	"intervuex-backend-go/internal/speech"
)

type Server struct {
	DB      *sqlx.DB
	Config  config.Config
	Tokens  auth.Tokens
	Orch    *interview.Orchestrator
	Mem     *memory.Service
	Proctor *proctor.Recorder
	Resumes *resumes.Service
	STT     speech.Transcriber
	TTS     speech.Synthesizer
	Log     *zap.Logger
}

func NewServer(db *sqlx.DB, cfg config.Config, orch *interview.Orchestrator, mem *memory.Service,
	recorder *proctor.Recorder, resumeSvc *resumes.Service, stt speech.Transcriber, tts speech.Synthesizer,
	log *zap.Logger) *Server {

	tokens := auth.Tokens{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	return &Server{
		DB:      db,
		Config:  cfg,
		Tokens:  tokens,
		Orch:    orch,
		Mem:     mem,
		Proctor: recorder,
		Resumes: resumeSvc,
		STT:     stt,
		TTS:     tts,
		Log:     log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.Log))
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.Health)

		api.Post("/auth/register", s.Register)
		api.Post("/auth/login", s.Login)
		api.Post("/auth/refresh", s.Refresh)
		api.Post("/auth/logout", s.Logout)

		api.Route("/me", func(me chi.Router) {
			me.Use(WithAuth(s.Tokens))
			me.Get("/", s.Me)
			me.Put("/password", s.ChangePassword)
			me.Get("/activity", s.MyActivity)
			me.Get("/analytics", s.MyAnalytics)
			me.Route("/memories", func(mem chi.Router) {
				mem.Get("/", s.ListMemories)
				mem.Delete("/{key}", s.DeleteMemory)
			})
		})

		api.Route("/resumes", func(res chi.Router) {
			res.Use(WithAuth(s.Tokens))
			res.Post("/", s.UploadResume)
			res.Get("/", s.ListResumes)
			res.Get("/latest", s.LatestResume)
		})

		api.Route("/interviews", func(iv chi.Router) {
			iv.Use(WithAuth(s.Tokens))
			iv.Post("/", s.StartInterview)
			iv.Get("/", s.ListInterviews)
			iv.Route("/{sessionId}", func(session chi.Router) {
				session.Get("/", s.GetInterview)
				session.Post("/questions/next", s.NextQuestion)
				session.Post("/responses", s.SubmitResponse)
				session.Post("/finalize", s.FinalizeInterview)
				session.Get("/questions", s.SessionQuestions)
				session.Get("/messages", s.SessionMessages)
				session.Get("/recordings", s.SessionRecordings)
				session.Get("/violations", s.SessionViolations)
				session.Post("/violations", s.ReportViolation)
				session.Post("/voice/turn", s.VoiceTurn)
				session.Post("/voice/finish", s.VoiceFinish)
			})
		})

		api.Route("/speech", func(sp chi.Router) {
			sp.Use(WithAuth(s.Tokens))
			sp.Post("/transcribe", s.Transcribe)
			sp.Post("/synthesize", s.Synthesize)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAuth(s.Tokens))
			admin.Use(RequireRole("admin"))
			admin.Get("/metrics/history", s.MetricsHistory)
		})
	})

	r.Get("/ws/proctor", s.ProctorSocket)
	return r
}
