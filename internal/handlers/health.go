package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/losol/eventuras-idp/utils"
)

type HealthResponseDto struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(HealthResponseDto{
		Status: "healthy",
		Time:   time.Now().UTC(),
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}
