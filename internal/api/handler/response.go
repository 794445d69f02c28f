package handler

import (
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxListLimit = 1000

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("Erro ao enviar resposta")
	}
}

// parseLimit lê ?limit=; zero significa o padrão do caso de uso
func parseLimit(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}
