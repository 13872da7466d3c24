package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/services"
	"github.com/arteterapia/workshop-service/internal/utils"
	"github.com/arteterapia/workshop-service/internal/validator"
)

type HandlerManager struct {
	authHandler        *AuthHandler
	invitationHandler  *InvitationHandler
	workshopHandler    *WorkshopHandler
	participantHandler *ParticipantHandler
	sessionHandler     *SessionHandler
	observationHandler *ObservationHandler
	authMiddleware     *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:        NewAuthHandler(serviceManager.Auth(), validator, logger),
		invitationHandler:  NewInvitationHandler(serviceManager.Invitation(), validator, logger),
		workshopHandler:    NewWorkshopHandler(serviceManager.Workshop(), serviceManager.Export(), validator, logger),
		participantHandler: NewParticipantHandler(serviceManager.Participant(), validator, logger),
		sessionHandler:     NewSessionHandler(serviceManager.Session(), validator, logger),
		observationHandler: NewObservationHandler(serviceManager.Observation(), validator, logger),
		authMiddleware:     NewJWTAuthMiddleware(serviceManager.Auth()),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")

	// Public routes: login, registration and token-based account recovery
	auth := v1.Group("/auth")
	{
		auth.POST("/login", hm.authHandler.Login)
		auth.POST("/refresh", hm.authHandler.Refresh)
		auth.POST("/register", hm.authHandler.Register)
		auth.POST("/verify-email/:token", hm.authHandler.VerifyEmail)
		auth.POST("/forgot-password", hm.authHandler.ForgotPassword)
		auth.POST("/reset-password", hm.authHandler.ResetPassword)
	}
	v1.GET("/invitations/token/:token", hm.invitationHandler.GetInvitationByToken)

	// Everything below requires a valid access token
	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		authed.GET("/auth/me", hm.authHandler.Me)
		authed.POST("/auth/change-password", hm.authHandler.ChangePassword)

		// Invitation management - Admins only
		invitations := authed.Group("/invitations")
		invitations.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			invitations.POST("", hm.invitationHandler.CreateInvitation)
			invitations.GET("", hm.invitationHandler.ListInvitations)
			invitations.DELETE("/:id", hm.invitationHandler.DeleteInvitation)
		}

		// Workshop routes
		workshops := authed.Group("/workshops")
		{
			workshops.POST("", hm.workshopHandler.CreateWorkshop)
			workshops.GET("", hm.workshopHandler.ListWorkshops)
			workshops.GET("/:id", hm.workshopHandler.GetWorkshop)
			workshops.PUT("/:id", hm.workshopHandler.UpdateWorkshop)
			workshops.DELETE("/:id", hm.workshopHandler.DeleteWorkshop)
			workshops.GET("/:id/stats", hm.workshopHandler.GetWorkshopStats)
			workshops.GET("/:id/export", hm.workshopHandler.ExportWorkshop)

			// Nested collections
			workshops.POST("/:id/participants", hm.participantHandler.CreateParticipant)
			workshops.GET("/:id/participants", hm.participantHandler.ListParticipants)
			workshops.POST("/:id/sessions", hm.sessionHandler.CreateSession)
			workshops.GET("/:id/sessions", hm.sessionHandler.ListSessions)
			workshops.GET("/:id/observations", hm.observationHandler.ListWorkshopObservations)
		}

		// Participant routes
		participants := authed.Group("/participants")
		{
			participants.GET("/:id", hm.participantHandler.GetParticipant)
			participants.PUT("/:id", hm.participantHandler.UpdateParticipant)
			participants.DELETE("/:id", hm.participantHandler.DeleteParticipant)
		}

		// Session routes
		sessions := authed.Group("/sessions")
		{
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.PUT("/:id", hm.sessionHandler.UpdateSession)
			sessions.DELETE("/:id", hm.sessionHandler.DeleteSession)
			sessions.GET("/:id/participants/:participant_id/observations", hm.observationHandler.GetHistory)
		}

		// Observation routes
		observations := authed.Group("/observations")
		{
			observations.GET("/questions", hm.observationHandler.GetQuestionCatalog)

			observations.POST("/flows", hm.observationHandler.StartFlow)
			observations.GET("/flows/:flow_id", hm.observationHandler.GetFlow)
			observations.POST("/flows/:flow_id/answers", hm.observationHandler.SubmitAnswer)
			observations.POST("/flows/:flow_id/complete", hm.observationHandler.CompleteFlow)
			observations.DELETE("/flows/:flow_id", hm.observationHandler.AbandonFlow)

			observations.GET("/:id", hm.observationHandler.GetObservation)
			observations.DELETE("/:id", hm.observationHandler.DeleteObservation)
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "workshop-service",
	})
}
