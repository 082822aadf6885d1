package handler

import (
	"net/http"
	"sync"
	"tutorhub/config"
	"tutorhub/di"
	"tutorhub/shared/logger"
	transport "tutorhub/transport/http"
)

var (
	server *transport.HTTP
	once   sync.Once
)

// Handler is the serverless entrypoint. Websocket push and the reminder job need the long running cmd/app process.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		logger.Init(config.Get())

		server = di.InitializeService()
	})

	r.RequestURI = r.URL.String()

	server.ServeHTTP(w, r)
}
