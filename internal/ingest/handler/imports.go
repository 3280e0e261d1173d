// Package handler exposes the import and read endpoints over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"ingest-service/internal/config"
	"ingest-service/internal/ingest/service"
	"ingest-service/internal/middleware"
)

const formMemory = 32 << 20

// Import accepts one or many multipart "file" parts and consolidates each.
// An optional default_year form field applies to sheets that name no year.
// Every file is reported; the status is 422 only when all of them failed.
func Import(svc *service.Service, cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := logger.With().Str("rid", middleware.GetRequestID(r)).Logger()

		mem := cfg.MaxUploadBytes()
		if mem > formMemory || mem <= 0 {
			mem = formMemory
		}
		if err := r.ParseMultipartForm(mem); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				fail(w, r, http.StatusRequestEntityTooLarge, "too_large", err.Error())
				return
			}
			fail(w, r, http.StatusBadRequest, "bad_form", "bad multipart form: "+err.Error())
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			fail(w, r, http.StatusBadRequest, "missing_file", "no file parts in form")
			return
		}

		run := svc
		if v := r.FormValue("default_year"); v != "" {
			y, ok := optYear(v)
			if !ok {
				fail(w, r, http.StatusBadRequest, "bad_default_year", "default_year must be a year between 1900 and 2999")
				return
			}
			run = svc.WithDefaultYear(y)
		}

		results := make([]service.FileResult, 0, len(files))
		for _, fh := range files {
			results = append(results, importPart(r.Context(), run, fh))
		}
		res := service.Tally(results)

		log.Info().
			Int("files", len(files)).
			Int("failed", res.Failed).
			Int("inserted", res.Counts.Inserted).
			Int("updated", res.Counts.Updated).
			Dur("elapsed", time.Since(start)).
			Msg("upload import done")

		w.Header().Set("Cache-Control", "no-store")
		if res.Failed == len(results) {
			render.Status(r, http.StatusUnprocessableEntity)
		}
		render.JSON(w, r, res)
	}
}

func importPart(ctx context.Context, svc *service.Service, fh *multipart.FileHeader) service.FileResult {
	return svc.ImportFrom(ctx, fh.Filename, func() (io.ReadCloser, error) { return fh.Open() })
}
