package handler

import "net/http"

// {{ service_name_constant }}Service is {{ service_name_pascal }}'s service
// name, as reported by Healthz.
const {{ service_name_constant }}Service = "{{ service_name }}"

// Healthz reports liveness for {{ service_name }}.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
