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

type TaskHandler struct {
	service    *services.TaskService
	uploadsDir string
}

func NewTaskHandler(service *services.TaskService, uploadsDir string) *TaskHandler {
	return &TaskHandler{service: service, uploadsDir: uploadsDir}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.TaskCreate) {
		writeMessage(w, http.StatusForbidden, "only administrators can create tasks")
		return
	}

	var input services.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	task, err := h.service.CreateTask(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.TaskRead) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	tasks, err := h.service.GetTasks(r.Context(), actor, r.URL.Query().Get("projectId"), r.URL.Query().Get("assigneeId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.TaskRead) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	task, err := h.service.GetTaskByID(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.TaskWrite) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	var input services.UpdateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	task, err := h.service.UpdateTask(r.Context(), actor, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// ChangeStatus is the status-only update path used by the employee board.
func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.TaskStatus) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	task, err := h.service.ChangeStatus(r.Context(), actor, mux.Vars(r)["id"], input.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.TaskWrite) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	if err := h.service.DeleteTask(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Task removed")
}

func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.TaskComment) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	var input struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	comment, err := h.service.AddComment(r.Context(), actor, mux.Vars(r)["id"], input.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func (h *TaskHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.TaskAttach) {
		writeMessage(w, http.StatusForbidden, "access denied")
		return
	}

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "file exceeds the 10MB limit or the form is malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

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

func (h *TaskHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !auth.Allowed(actor.Role, auth.TaskRead) {
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
