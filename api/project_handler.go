package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rpupo63/portfolio-backend/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const streamKeepAlive = 25 * time.Second

// ImageUploader stores a project image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *store.ProjectStore
	images    ImageUploader
}

func newProjectHandler(projects *store.ProjectStore, images ImageUploader) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
		images:    images,
	}
}

// getAllProjects returns the gallery
// @Summary Get all projects
// @Description Returns every project in gallery order. Responds 503 until the initial load has finished.
// @Tags Projects
// @Produce json
// @Param featured query bool false "Only featured projects"
// @Success 200 {object} ProjectCollection "List of projects"
// @Failure 503 {object} ErrorResponse "Projects are still loading"
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.projects.Loading() {
			w.Header().Set("Retry-After", "1")
			h.responder.WriteError(w, errs.NewServiceUnavailableError("projects", errors.New("projects are still loading")))
			return
		}

		projects := h.projects.Projects()
		if featured, err := strconv.ParseBool(r.URL.Query().Get("featured")); err == nil && featured {
			filtered := projects[:0]
			for _, p := range projects {
				if p.IsFeatured {
					filtered = append(filtered, p)
				}
			}
			projects = filtered
		}

		h.responder.WriteJSON(w, ProjectCollection{Projects: projects, Total: len(projects)})
	}
}

// getProject returns one project by local or remote id
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Local or remote project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, ok := h.projects.Get(chi.URLParam(r, "projectID"))
		if !ok {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// createProject adds a project; the remote insert happens in the background
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body models.NewProjectInput true "Project form data, tags comma separated"
// @Success 201 {object} models.Project "Created project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Router /project [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.NewProjectInput
		if err := decodeJSON(r, &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateNewProject(&input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := h.projects.Create(input)
		h.logger.Info().
			Str("sessionId", ctxGetSessionID(r.Context())).
			Str("localId", project.LocalID).
			Str("title", project.Title).
			Msg("project created")
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, project)
	}
}

// updateProject merges the given fields into a project
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Local or remote project ID"
// @Param patch body models.ProjectPatch true "Fields to change"
// @Success 200 {object} models.Project "Updated project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")

		var patch models.ProjectPatch
		if err := decodeJSON(r, &patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateProjectPatch(&patch); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if !h.projects.Update(projectID, patch) {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}
		h.logger.Info().Str("sessionId", ctxGetSessionID(r.Context())).Str("id", projectID).Msg("project updated")
		h.writeProject(w, projectID)
	}
}

// toggleFeatured flips whether a project is featured
// @Summary Toggle featured
// @Tags Projects
// @Produce json
// @Param projectID path string true "Local or remote project ID"
// @Success 200 {object} models.Project "Updated project"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID}/feature [post]
func (h projectHandler) toggleFeatured() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		if !h.projects.ToggleFeatured(projectID) {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}
		h.writeProject(w, projectID)
	}
}

// deleteProject removes a project
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Local or remote project ID"
// @Success 200 {object} StatusResponse "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")
		if !h.projects.Delete(projectID) {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}
		h.logger.Info().Str("sessionId", ctxGetSessionID(r.Context())).Str("id", projectID).Msg("project deleted")
		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "project deleted successfully",
		})
	}
}

// reconcileProjects re-reads the remote table
// @Summary Reconcile projects
// @Tags Projects
// @Produce json
// @Success 200 {object} ProjectCollection "Reconciled list"
// @Failure 503 {object} ErrorResponse "Remote table unavailable"
// @Router /projects/reconcile [post]
func (h projectHandler) reconcileProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.projects.Reconcile(r.Context()); err != nil {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("projects table", err))
			return
		}
		projects := h.projects.Projects()
		h.responder.WriteJSON(w, ProjectCollection{Projects: projects, Total: len(projects)})
	}
}

// uploadImage stores a project image and returns its URL
// @Summary Upload project image
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "PNG, JPEG, GIF or WebP image"
// @Success 201 {object} ImageUploadResponse
// @Failure 413 {object} ErrorResponse "Image too large"
// @Failure 415 {object} ErrorResponse "Unsupported image type"
// @Router /project/image [post]
func (h projectHandler) uploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.images == nil {
			h.responder.WriteError(w, errs.NewConfigMissingError("S3_BUCKET"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageSize+(1<<20))
		file, _, err := r.FormFile("image")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(services.MaxImageSize))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, services.MaxImageSize+1))
		if err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}

		url, err := h.images.Upload(r.Context(), data)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONWithStatus(w, http.StatusCreated, ImageUploadResponse{ImageURL: url})
	}
}

// streamProjects pushes the gallery as server-sent events: once on connect,
// then after every change.
// @Summary Stream projects
// @Tags Projects
// @Produce text/event-stream
// @Router /projects/stream [get]
func (h projectHandler) streamProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("streaming unsupported", errors.New("response writer cannot flush")))
			return
		}

		// Only the newest snapshot matters, so a full channel drops the older one.
		updates := make(chan []models.Project, 1)
		cancel := h.projects.Subscribe(func(projects []models.Project) {
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- projects:
			default:
			}
		})
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		if err := writeProjectsEvent(w, h.projects.Projects()); err != nil {
			return
		}
		flusher.Flush()

		keepAlive := time.NewTicker(streamKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case projects := <-updates:
				if err := writeProjectsEvent(w, projects); err != nil {
					h.logger.Debug().Err(err).Msg("stream client gone")
					return
				}
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
			}
			flusher.Flush()
		}
	}
}

func writeProjectsEvent(w io.Writer, projects []models.Project) error {
	data, err := json.Marshal(ProjectCollection{Projects: projects, Total: len(projects)})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: projects\ndata: %s\n\n", data)
	return err
}

func (h projectHandler) writeProject(w http.ResponseWriter, projectID string) {
	project, ok := h.projects.Get(projectID)
	if !ok {
		h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
		return
	}
	h.responder.WriteJSON(w, project)
}
