// handlers/auth_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/utils"
)

// normalizeRole ensures consistent role naming for frontend mapping
func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))

	switch role {
	case "superadmin":
		return "superadmin"
	case "admin":
		return "admin"
	case "analyst":
		return "analyst"
	case "viewer":
		return "viewer"
	default:
		return "analyst"
	}
}

// Login handles user authentication
func Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || !strings.Contains(creds.Email, "@") {
		utils.RespondWithError(w, http.StatusBadRequest, "Valid email required")
		return
	}
	if len(creds.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	var user models.User
	err := userCollection.FindOne(r.Context(), bson.M{
		"email":     creds.Email,
		"deletedAt": nil,
	}).Decode(&user)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			// keep the response time flat whether or not the email exists
			_ = utils.CheckPasswordHash("dummy_password", "$2a$10$dummyhashfordummycomparison")
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("Database error during login: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Authentication service unavailable")
		return
	}

	if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	normalizedRole := normalizeRole(user.Role)

	token, err := utils.GenerateJWT(
		user.ID.Hex(),
		user.FirstName+" "+user.LastName,
		normalizedRole,
		user.OrganizationID.Hex(),
	)
	if err != nil {
		log.Printf("JWT generation error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	updateCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, err = userCollection.UpdateOne(
		updateCtx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		log.Printf("Failed to update user timestamp: %v", err)
	}

	var org models.Organization
	if err := orgCollection.FindOne(updateCtx, bson.M{"_id": user.OrganizationID}).Decode(&org); err != nil {
		log.Printf("Failed to load organization %s: %v", user.OrganizationID.Hex(), err)
	}

	response := map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":               user.ID.Hex(),
			"name":             user.FirstName + " " + user.LastName,
			"firstName":        user.FirstName,
			"lastName":         user.LastName,
			"email":            user.Email,
			"role":             normalizedRole,
			"organization":     user.OrganizationID.Hex(),
			"organizationName": org.Name,
			"createdAt":        user.CreatedAt,
		},
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

// Logout is stateless on the server side. The client discards the token;
// the endpoint exists so the frontend has something to call.
func Logout(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// ValidateToken re-checks the bearer token and returns the claims, so a
// reloaded frontend can restore its session without a new login.
func ValidateToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authorization header required")
		return
	}

	claims, err := utils.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid": true,
		"user": map[string]interface{}{
			"id":           claims.UserID,
			"name":         claims.Name,
			"role":         claims.Role,
			"organization": claims.OrganizationID,
		},
	})
}

// ChangePassword verifies the current password before setting a new one.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	userIDStr, ok := r.Context().Value("userID").(string)
	if !ok || userIDStr == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "user id required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid user id")
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if len(req.NewPassword) < 8 {
		utils.RespondWithError(w, http.StatusBadRequest, "New password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err = userCollection.FindOne(ctx, bson.M{"_id": userID, "deletedAt": nil}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("find user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("hash password error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	_, err = userCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()}})
	if err != nil {
		log.Printf("update password error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}
