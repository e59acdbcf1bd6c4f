// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/middleware"
	requestutil "github.com/sajagsubedi/Social-Media-Microservice/internal/platform/request"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/respond"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/validate"
	"github.com/sajagsubedi/Social-Media-Microservice/pkg/pagination"
)

// Handler implements the content HTTP endpoints.
type Handler struct {
	postService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{postService: service}
}

// Routes returns a [chi.Router] configured with content routes.
//
// # Endpoints
//   - POST   /     : Publishes a new post.
//   - GET    /     : Lists posts, newest first, paginated.
//   - GET    /{id} : Returns a single post.
//   - DELETE /{id} : Deletes the caller's own post.
//
// All routes require an authenticated caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Delete("/{id}", handler.remove)

	return router
}

type createRequest struct {
	Content  string   `json:"content"`
	MediaIDs []string `json:"mediaIds"`
}

// create handles POST /api/posts.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldContent, input.Content).
		MaxLen(FieldContent, input.Content, ContentMaxLength)
	for _, mediaID := range input.MediaIDs {
		validator.UUID(FieldMediaIDs, mediaID)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Create(request.Context(), CreateInput{
		UserID:   userID,
		Content:  input.Content,
		MediaIDs: input.MediaIDs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Post created successfully", post)
}

// list handles GET /api/posts.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	posts, meta, err := handler.postService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, posts, meta)
}

// get handles GET /api/posts/{id}.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID(FieldPostID, id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Post fetched successfully", post)
}

// remove handles DELETE /api/posts/{id}.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.ID(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID(FieldPostID, id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.postService.Delete(request.Context(), id, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Post deleted successfully", nil)
}
