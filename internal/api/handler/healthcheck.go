package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const healthcheckTimeout = 2 * time.Second

// Pinger é o store consultado pelo healthcheck
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthcheckResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Time   string `json:"time"`
}

func HealthcheckHandler(store Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthcheckTimeout)
		defer cancel()

		resp := healthcheckResponse{
			Status: "ok",
			Store:  "ok",
			Time:   time.Now().UTC().Format(time.RFC3339),
		}
		status := http.StatusOK

		if err := store.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("Store indisponível no healthcheck")
			resp.Status = "degraded"
			resp.Store = "unreachable"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, resp)
	})
}
