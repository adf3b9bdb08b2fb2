package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"signaltracker/src/auth"
	"signaltracker/src/model"
	"signaltracker/src/repository"
)

type userStore interface {
	GetUserByUserName(ctx context.Context, userName string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type tokenResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      model.UserResponse `json:"user"`
}

func RegisterHandler(repo userStore, j auth.JWT) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.RegisterPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		userName := strings.TrimSpace(payload.UserName)
		if userName == "" || len(payload.Password) < 8 {
			http.Error(w, "user_name and a password of at least 8 characters are required", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.WithError(err).Error("failed to hash password")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		user := &model.User{
			UserName:     userName,
			Email:        strings.TrimSpace(payload.Email),
			PasswordHash: string(hash),
		}

		if err := repo.Create(r.Context(), user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				http.Error(w, "user_name already taken", http.StatusConflict)
				return
			}
			logger.WithError(err).Error("failed to create user")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeToken(w, j, user)
	}
}

func LoginHandler(repo userStore, j auth.JWT) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.LoginPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		user, err := repo.GetUserByUserName(r.Context(), strings.TrimSpace(payload.UserName))
		if err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		writeToken(w, j, user)
	}
}

func writeToken(w http.ResponseWriter, j auth.JWT, user *model.User) {
	token, expiresAt, err := j.Sign(user.ID, user.UserName)
	if err != nil {
		logger.WithError(err).Error("failed to sign token")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	response := tokenResponse{Token: token, ExpiresAt: expiresAt, User: user.ToResponse()}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("failed to encode token response")
	}
}

func DefaultRegisterHandler(j auth.JWT) http.HandlerFunc {
	return RegisterHandler(repository.NewUserRepository(), j)
}

func DefaultLoginHandler(j auth.JWT) http.HandlerFunc {
	return LoginHandler(repository.NewUserRepository(), j)
}
