package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/emrgen/docgen/internal/calc"
	"github.com/emrgen/docgen/internal/service"
	"github.com/gorilla/mux"
)

// Handler exposes the document services over HTTP.
type Handler struct {
	documents *service.DocumentService
	templates *service.TemplateService
	pipeline  *service.Pipeline
	profiles  *service.ProfileService
}

func NewHandler(documents *service.DocumentService, templates *service.TemplateService, pipeline *service.Pipeline, profiles *service.ProfileService) *Handler {
	return &Handler{documents: documents, templates: templates, pipeline: pipeline, profiles: profiles}
}

const maxLogoSize = 2 << 20

// Router registers all routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestTime)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(RequireUser)

	v1.HandleFunc("/documents", h.createDocument).Methods(http.MethodPost)
	v1.HandleFunc("/documents", h.listDocuments).Methods(http.MethodGet)
	v1.HandleFunc("/documents/{id}", h.getDocument).Methods(http.MethodGet)
	v1.HandleFunc("/documents/{id}", h.updateDocument).Methods(http.MethodPut)
	v1.HandleFunc("/documents/{id}", h.deleteDocument).Methods(http.MethodDelete)
	v1.HandleFunc("/documents/{id}/pdf", h.documentPDF).Methods(http.MethodGet)
	v1.HandleFunc("/documents/{id}/send", h.sendDocument).Methods(http.MethodPost)
	v1.HandleFunc("/documents/{id}/items", h.addItem).Methods(http.MethodPost)
	v1.HandleFunc("/documents/{id}/items/{index}", h.updateItem).Methods(http.MethodPatch)

	v1.HandleFunc("/templates", h.listTemplates).Methods(http.MethodGet)
	v1.HandleFunc("/templates/{name}", h.getTemplate).Methods(http.MethodGet)
	v1.HandleFunc("/templates/{name}", h.putTemplate).Methods(http.MethodPut)
	v1.HandleFunc("/templates/{name}", h.deleteTemplate).Methods(http.MethodDelete)

	v1.HandleFunc("/profile", h.getProfile).Methods(http.MethodGet)
	v1.HandleFunc("/profile", h.updateProfile).Methods(http.MethodPut)
	v1.HandleFunc("/profile/logo", h.uploadLogo).Methods(http.MethodPut)

	return r
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json: %v", service.ErrValidation, err)
	}
	return nil
}

func (h *Handler) createDocument(w http.ResponseWriter, r *http.Request) {
	var req service.CreateDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.documents.CreateDocument(r.Context(), userID(r.Context()), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListDocuments(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.GetDocument(r.Context(), userID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) updateDocument(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateDocumentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.documents.UpdateDocument(r.Context(), userID(r.Context()), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.documents.DeleteDocument(r.Context(), userID(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// documentPDF streams the PDF, or uploads it and returns the reference when
// store=true.
func (h *Handler) documentPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(ctx)

	doc, err := h.documents.GetDocument(ctx, uid, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.pipeline.User(ctx, uid)
	if err != nil {
		writeError(w, err)
		return
	}

	if store, _ := strconv.ParseBool(r.URL.Query().Get("store")); store {
		ref, err := h.pipeline.StorePDF(ctx, doc, user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": ref})
		return
	}

	data, err := h.pipeline.RenderPDF(ctx, doc, user)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s_%s.pdf"`, doc.Type, doc.Number))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type sendRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *Handler) sendDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(ctx)

	var req sendRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.documents.GetDocument(ctx, uid, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.pipeline.User(ctx, uid)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.pipeline.Send(ctx, doc, user, req.Email, req.Message); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.AddItem(r.Context(), userID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

type updateItemRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// value accepts both "2" and 2.
func (u updateItemRequest) value() string {
	var s string
	if err := json.Unmarshal(u.Value, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(u.Value))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, fmt.Errorf("%w: index must be an integer", service.ErrValidation))
		return
	}

	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.documents.UpdateItem(r.Context(), userID(r.Context()), mux.Vars(r)["id"], index, calc.Field(req.Field), req.value())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	tmpls, err := h.templates.ListTemplates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpls)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.templates.GetTemplate(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

type putTemplateRequest struct {
	Content string `json:"content"`
}

func (h *Handler) putTemplate(w http.ResponseWriter, r *http.Request) {
	var req putTemplateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tmpl, err := h.templates.SaveTemplate(r.Context(), mux.Vars(r)["name"], req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	if err := h.templates.DeleteTemplate(r.Context(), mux.Vars(r)["name"], force); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.profiles.GetProfile(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.profiles.UpdateProfile(r.Context(), userID(r.Context()), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// uploadLogo takes the raw image as body; the filename query parameter gives
// its extension.
func (h *Handler) uploadLogo(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLogoSize))
	if err != nil {
		writeError(w, fmt.Errorf("%w: logo: %v", service.ErrValidation, err))
		return
	}

	user, err := h.profiles.UploadLogo(r.Context(), userID(r.Context()), r.URL.Query().Get("filename"), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
