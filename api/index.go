package handler

import (
	"net/http"
	"sync"

	"github.com/imaijo201-star/real-estate-mg/bootstrap"
	"github.com/imaijo201-star/real-estate-mg/internal/interfaces/router"

	"github.com/rs/zerolog/log"
)

var (
	once    sync.Once
	entry   http.Handler
	initErr error
)

func load() {
	app, err := bootstrap.New()
	if err != nil {
		initErr = err
		log.Error().Err(err).Msg("serverless: app init failed")
		return
	}
	entry = router.Handler(app)
}

// Handler serves every rewritten request through the app, built on the
// first invocation of a warm instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(load)
	if initErr != nil {
		http.Error(w, `{"success":false,"error":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	r.RequestURI = r.URL.String()
	entry.ServeHTTP(w, r)
}
