package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/123jagadeesh/ProFlow/auth"
	"github.com/123jagadeesh/ProFlow/services"
)

// allowedProjectMimeTypes restricts project uploads to documents, images,
// and PDFs, matching what the board UI can render.
var allowedProjectMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

type ProjectHandler struct {
	service    *services.ProjectService
	uploadsDir string
}

func NewProjectHandler(service *services.ProjectService, uploadsDir string) *ProjectHandler {
	return &ProjectHandler{service: service, uploadsDir: uploadsDir}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.ProjectCreate) {
		writeMessage(w, http.StatusForbidden, "only administrators can create projects")
		return
	}

	var input services.CreateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	project, err := h.service.CreateProject(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.ProjectRead) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	projects, err := h.service.GetProjects(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.ProjectRead) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	project, err := h.service.GetProjectByID(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateStatuses(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.ProjectStatuses) {
		writeMessage(w, http.StatusForbidden, "only administrators can update project statuses")
		return
	}

	var input struct {
		Statuses []string `json:"statuses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	project, err := h.service.UpdateStatuses(r.Context(), actor, mux.Vars(r)["id"], input.Statuses)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Project statuses updated successfully",
		"project": project,
	})
}

func (h *ProjectHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.ProjectAttach) {
		writeMessage(w, http.StatusForbidden, "only administrators can upload project attachments")
		return
	}

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "file exceeds the 10MB limit or the form is malformed")
		return
	}
	file, header, err := r.FormFile("attachment")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !allowedProjectMimeTypes[header.Header.Get("Content-Type")] {
		writeMessage(w, http.StatusBadRequest, "invalid file type, only documents, images, and PDFs are allowed")
		return
	}

	attachment, storedPath, err := saveUploadedFile(file, header, h.uploadsDir)
	if err != nil {
		writeError(w, err)
		return
	}

	saved, err := h.service.AddAttachment(r.Context(), actor, mux.Vars(r)["id"], attachment)
	if err != nil {
		os.Remove(storedPath)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "File uploaded successfully",
		"attachment": saved,
	})
}

func (h *ProjectHandler) GetAttachments(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.ProjectRead) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	attachments, err := h.service.GetAttachments(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, attachments)
}

func (h *ProjectHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.ProjectRead) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	vars := mux.Vars(r)
	attachment, err := h.service.FindAttachment(r.Context(), actor, vars["id"], vars["filename"])
	if err != nil {
		writeError(w, err)
		return
	}

	filePath := filepath.Join(h.uploadsDir, attachment.StoredFilename)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+attachment.Filename+"\"")
	w.Header().Set("Content-Type", attachment.MimeType)
	http.ServeFile(w, r, filePath)
}

func (h *ProjectHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.ProjectDetach) {
		writeMessage(w, http.StatusForbidden, "only administrators can delete attachments")
		return
	}

	vars := mux.Vars(r)
	attachment, err := h.service.RemoveAttachment(r.Context(), actor, vars["id"], vars["filename"])
	if err != nil {
		writeError(w, err)
		return
	}

	// A missing file is fine, the metadata is already gone.
	if err := os.Remove(filepath.Join(h.uploadsDir, attachment.StoredFilename)); err != nil && !os.IsNotExist(err) {
		writeMessage(w, http.StatusInternalServerError, "attachment removed but file cleanup failed")
		return
	}

	writeMessage(w, http.StatusOK, "Attachment deleted successfully")
}
