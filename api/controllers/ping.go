package controllers

import (
	"net/http"

	"github.com/nadiaferrer/studiohub-backend/api/responses"
)

// Ping answers the unauthenticated liveness probe used by load balancers.
func Ping(w http.ResponseWriter, _ *http.Request) {
	responses.WriteSuccess(w, map[string]string{"message": "pong"})
}
