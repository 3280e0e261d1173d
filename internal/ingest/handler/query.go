package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"ingest-service/internal/ingest/model"
	"ingest-service/internal/store"
)

const defaultImportsLimit = 50

func Summary(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := st.Summary(r.Context())
		if err != nil {
			storeFail(w, r, err)
			return
		}
		if sum == nil {
			sum = []model.SectionSummary{}
		}
		render.JSON(w, r, sum)
	}
}

// Records lists consolidated rows, optionally narrowed by ?section= and ?year=.
func Records(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		year, ok := optYear(q.Get("year"))
		if !ok {
			fail(w, r, http.StatusBadRequest, "bad_year", "year must be a year between 1900 and 2999")
			return
		}
		recs, err := st.Metrics(r.Context(), model.MetricFilter{Section: q.Get("section"), Year: year})
		if err != nil {
			storeFail(w, r, err)
			return
		}
		if recs == nil {
			recs = []model.MetricRecord{}
		}
		render.JSON(w, r, recs)
	}
}

func Imports(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := atoi(r.URL.Query().Get("limit"), defaultImportsLimit)
		entries, err := st.Imports(r.Context(), limit)
		if err != nil {
			storeFail(w, r, err)
			return
		}
		if entries == nil {
			entries = []model.ImportLogEntry{}
		}
		render.JSON(w, r, entries)
	}
}

func LatestIdentification(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := st.LatestIdentification(r.Context())
		if err != nil {
			storeFail(w, r, err)
			return
		}
		render.JSON(w, r, id)
	}
}

func Stats(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := st.Stats(r.Context())
		if err != nil {
			storeFail(w, r, err)
			return
		}
		render.JSON(w, r, s)
	}
}
