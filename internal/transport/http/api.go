package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"matha-service/internal/app"
	"matha-service/internal/logger"
	"matha-service/internal/metrics"
)

// API holds the use cases served over HTTP.
type API struct {
	Auth        *app.AuthService
	Users       *app.UserService
	Content     *app.ContentService
	Bookings    *app.BookingService
	Catalog     *app.CategoryCatalog
	Quiz        *app.QuizService
	Results     *app.Recorder
	Leaderboard *app.LeaderboardRanker
	Metrics     *metrics.Metrics
	Log         *logger.Logger
	// AllowOrigins lists CORS origins; empty allows any origin.
	AllowOrigins []string
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(a *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
	}
	if len(a.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = a.AllowOrigins
	}
	router.Use(cors.New(corsCfg))

	var gauge SocketGauge
	if a.Metrics != nil {
		gauge = a.Metrics
		router.Use(a.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	ws := NewWSHandler(a.Quiz, gauge, a.Log)
	router.GET("/ws/quiz", gin.WrapF(ws.ServeWS))

	api := router.Group("/api")
	{
		api.POST("/auth/send-otp", a.sendOTP)
		api.POST("/auth/verify-otp", a.verifyOTP)

		api.GET("/users/:id", a.getUser)
		api.PUT("/users/:id/profile", a.updateProfile)

		api.GET("/events", a.listEvents)
		api.GET("/artefacts", a.listArtefacts)
		api.GET("/artefacts/:id", a.getArtefact)
		api.GET("/learn", a.listLearnContent)

		api.POST("/bookings/rooms", a.createBooking)
		api.GET("/bookings/user/:userId", a.userBookings)

		api.GET("/quiz/categories", a.listCategories)
		api.GET("/quiz/questions", a.listQuestions)
		api.POST("/quiz/sessions", a.startSession)
		api.GET("/quiz/sessions/:id", a.getSession)
		api.POST("/quiz/sessions/:id/answers", a.answer)
		api.DELETE("/quiz/sessions/:id", a.abandonSession)
		api.GET("/quiz/results", a.listResults)

		api.GET("/leaderboard", a.leaderboard)
	}
	return router
}
