package handler

import "net/http"

// Metrics is a placeholder metrics endpoint.
func Metrics(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("# no metrics registered yet\n"))
}
