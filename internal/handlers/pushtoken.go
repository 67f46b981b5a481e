package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/planmoni/depositwatch/internal/handlers/render"
	"github.com/planmoni/depositwatch/internal/logger"
	"github.com/planmoni/depositwatch/internal/models"
)

func handleRegisterPushToken(pushTokens pushTokenStore, l logger.Logger) http.Handler {
	type request struct {
		UserID   string `json:"user_id" validate:"required,uuid"`
		Token    string `json:"token" validate:"required"`
		Platform string `json:"platform" validate:"omitempty,oneof=ios android web"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		err = pushTokens.UpsertToken(r.Context(), models.PushToken{
			UserID:   userID,
			Token:    req.Token,
			Platform: req.Platform,
		})
		if err != nil {
			l.Error("Failed to store push token", "user_id", userID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
