package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/csmacd/internal/auth"
	"github.com/danmuck/csmacd/internal/observability"
	"github.com/danmuck/csmacd/internal/simulation"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

// SessionRunner plays one session to completion. *simulation.Runner implements it.
type SessionRunner interface {
	Run(stationCount int) (simulation.Result, error)
}

type Server struct {
	ID          string
	Addr        string
	MaxStations int
	Appeared    time.Time
	Store       *Store
	// Auth gates session launches; nil leaves POST /sessions open.
	Auth auth.Validator

	runner SessionRunner
	router *gin.Engine
}

type runRequest struct {
	Stations int `json:"stations"`
}

func NewServer(id, addr string, corsOrigins []string, runner SessionRunner, store *Store, maxStations int) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger, id))
	r.Use(observability.RequestMetricsMiddleware(id))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", auth.TokenHeader},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	if store == nil {
		store = NewStore(32)
	}
	return &Server{
		ID:          id,
		Addr:        addr,
		MaxStations: maxStations,
		Appeared:    time.Now(),
		Store:       store,
		runner:      runner,
		router:      r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   s.runner != nil,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/sessions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sessions": s.Store.List()})
	})

	r.GET("/sessions/latest", func(c *gin.Context) {
		res, ok := s.Store.Latest()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no sessions yet"})
			return
		}
		c.Set(observability.SessionKey, res.ID)
		c.JSON(http.StatusOK, NewDocument(res))
	})

	r.GET("/sessions/:id", func(c *gin.Context) {
		c.Set(observability.SessionKey, c.Param("id"))
		res, ok := s.Store.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusOK, NewDocument(res))
	})

	r.POST("/sessions", auth.Require(s.Auth), func(c *gin.Context) {
		var req runRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := s.RunSession(req.Stations)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, simulation.ErrInvalidStationCount) || errors.Is(err, ErrTooManyStations) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.Set(observability.SessionKey, res.ID)
		c.JSON(http.StatusCreated, NewDocument(res))
	})
}

var (
	ErrTooManyStations = errors.New("report: station count exceeds limit")
	ErrNoRunner        = errors.New("report: no session runner configured")
)

// RunSession plays a session synchronously and stores its result.
func (s *Server) RunSession(stationCount int) (simulation.Result, error) {
	if s.runner == nil {
		return simulation.Result{}, ErrNoRunner
	}
	if s.MaxStations > 0 && stationCount > s.MaxStations {
		return simulation.Result{}, ErrTooManyStations
	}
	res, err := s.runner.Run(stationCount)
	if err != nil {
		log.Warn().Str("server", s.ID).Int("stations", stationCount).Err(err).Msg("session rejected")
		return simulation.Result{}, err
	}
	s.Store.Add(res)
	observability.RecordSession(res.Elapsed)
	log.Info().Str("server", s.ID).Str("session", res.ID).Int("stations", stationCount).Msg("session stored")
	return res, nil
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
