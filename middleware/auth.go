package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/config"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/database"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WebSocket upgrades authenticate via query token in the handler
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID format")
			return
		}

		var user models.User
		err = database.Client.Database(config.DatabaseName).Collection("users").
			FindOne(r.Context(), bson.M{"_id": userID, "deletedAt": nil}).Decode(&user)
		if err != nil {
			log.Printf("AuthMiddleware: user %s not found: %v", userID.Hex(), err)
			utils.RespondWithError(w, http.StatusUnauthorized, "User not found")
			return
		}

		if user.OrganizationID.IsZero() {
			utils.RespondWithError(w, http.StatusBadRequest, "User has no organization")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		ctx = context.WithValue(ctx, "userName", claims.Name)
		ctx = context.WithValue(ctx, "userRole", claims.Role)
		ctx = context.WithValue(ctx, "orgID", user.OrganizationID.Hex())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
