// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/middleware"
	requestutil "github.com/sajagsubedi/Social-Media-Microservice/internal/platform/request"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/respond"
	"github.com/sajagsubedi/Social-Media-Microservice/internal/platform/validate"
	"github.com/sajagsubedi/Social-Media-Microservice/pkg/pagination"
)

// Handler implements the media HTTP endpoints.
type Handler struct {
	mediaService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{mediaService: service}
}

// Routes returns a [chi.Router] configured with media routes.
//
// # Endpoints
//   - POST /upload : Stores a multipart-uploaded asset.
//   - GET  /       : Lists the caller's assets.
//
// All routes require an authenticated caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)

	router.Post("/upload", handler.upload)
	router.Get("/", handler.list)

	return router
}

// upload handles POST /api/media/upload.
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Cap the whole request body before multipart parsing reads anything.
	request.Body = http.MaxBytesReader(writer, request.Body, MaxUploadBytes)

	file, header, err := request.FormFile(UploadFormField)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldFile, "A file is required"))
		return
	}
	defer file.Close()

	media, err := handler.mediaService.Upload(request.Context(), UploadInput{
		UserID:       userID,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Reader:       file,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Media uploaded successfully", media)
}

// list handles GET /api/media.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	assets, meta, err := handler.mediaService.ListByUser(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, assets, meta)
}
