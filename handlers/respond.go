package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/123jagadeesh/ProFlow/logging"
	"github.com/123jagadeesh/ProFlow/middleware"
	"github.com/123jagadeesh/ProFlow/models"
	"github.com/123jagadeesh/ProFlow/services"
)

// MaxUploadSize caps attachment uploads at 10MB.
const MaxUploadSize = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps service sentinels onto the HTTP taxonomy. Anything
// unrecognized is a 500 with the detail kept out of the response body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, services.ErrForbidden):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %v", err)
		writeMessage(w, http.StatusInternalServerError, "server error")
	}
}

// actorFromRequest turns the middleware claims into the Actor services
// expect.
func actorFromRequest(r *http.Request) (models.Actor, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return models.Actor{}, fmt.Errorf("missing authentication context")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid user id in token")
	}
	companyID, err := primitive.ObjectIDFromHex(claims.Company)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid company id in token")
	}

	return models.Actor{
		ID:      userID,
		Role:    models.Role(claims.Role),
		Company: companyID,
	}, nil
}

// saveUploadedFile writes a multipart part to the uploads directory under a
// unique name and returns the metadata stub. The caller removes the file
// again if the request fails later.
func saveUploadedFile(file multipart.File, header *multipart.FileHeader, uploadsDir string) (models.Attachment, string, error) {
	if header.Size > MaxUploadSize {
		return models.Attachment{}, "", fmt.Errorf("%w: file exceeds the 10MB limit", services.ErrValidation)
	}

	if err := os.MkdirAll(uploadsDir, 0750); err != nil {
		return models.Attachment{}, "", fmt.Errorf("failed to prepare uploads directory: %v", err)
	}

	storedName := uuid.New().String() + filepath.Ext(header.Filename)
	storedPath := filepath.Join(uploadsDir, storedName)

	out, err := os.Create(storedPath)
	if err != nil {
		return models.Attachment{}, "", fmt.Errorf("failed to store file: %v", err)
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		os.Remove(storedPath)
		return models.Attachment{}, "", fmt.Errorf("failed to store file: %v", err)
	}
	if written > MaxUploadSize {
		os.Remove(storedPath)
		return models.Attachment{}, "", fmt.Errorf("%w: file exceeds the 10MB limit", services.ErrValidation)
	}

	attachment := models.Attachment{
		Filename:       header.Filename,
		StoredFilename: storedName,
		MimeType:       header.Header.Get("Content-Type"),
		Size:           written,
	}

	return attachment, storedPath, nil
}
