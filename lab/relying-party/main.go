// A deliberately small relying party: a storefront that gates one route on
// the age verification service's public threshold check. It trusts the
// gateway's answer wholesale and identifies visitors by a bare query
// parameter, which is exactly as much rigor as a lab toy needs.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

type apiResponse struct {
	Message  string          `json:"message"`
	Eligible *bool           `json:"eligible,omitempty"`
	Guidance string          `json:"guidance,omitempty"`
	Warning  string          `json:"warning,omitempty"`
	Gateway  json.RawMessage `json:"gateway,omitempty"`
}

type checkResponse struct {
	Subject   string `json:"subject"`
	Threshold uint64 `json:"threshold"`
	Eligible  bool   `json:"eligible"`
}

func main() {
	port := getenv("PORT", "9100")
	gatewayURL := getenv("AGEGATE_URL", "http://localhost:8080")
	threshold := getenvInt("AGE_THRESHOLD", 18)

	client := &http.Client{Timeout: 5 * time.Second}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, apiResponse{Message: "ok"})
	})
	mux.HandleFunc("/store/catalog", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, apiResponse{Message: "general catalog; no age check"})
	})
	mux.HandleFunc("/store/restricted", func(w http.ResponseWriter, r *http.Request) {
		subject := r.URL.Query().Get("subject")
		if subject == "" {
			writeJSON(w, http.StatusBadRequest, apiResponse{Message: "provide ?subject=<principal>"})
			return
		}

		url := fmt.Sprintf("%s/verification/%s/check?threshold=%d", gatewayURL, subject, threshold)
		resp, err := client.Get(url)
		if err != nil {
			// Fail closed: no gateway answer means no restricted content.
			writeJSON(w, http.StatusBadGateway, apiResponse{
				Message: "age verification unavailable",
				Warning: err.Error(),
			})
			return
		}
		defer resp.Body.Close()

		var check checkResponse
		if err := json.NewDecoder(resp.Body).Decode(&check); err != nil || resp.StatusCode != http.StatusOK {
			writeJSON(w, http.StatusBadGateway, apiResponse{
				Message: "age verification returned an unusable answer",
				Warning: fmt.Sprintf("status %d", resp.StatusCode),
			})
			return
		}

		if !check.Eligible {
			denied := false
			writeJSON(w, http.StatusForbidden, apiResponse{
				Message:  "restricted content requires a standing age verification",
				Eligible: &denied,
				Guidance: fmt.Sprintf("commit and reveal an age proof for threshold %d, then have a verifier validate it", threshold),
			})
			return
		}

		allowed := true
		writeJSON(w, http.StatusOK, apiResponse{
			Message:  "restricted content unlocked",
			Eligible: &allowed,
		})
	})
	mux.HandleFunc("/debug/status", func(w http.ResponseWriter, r *http.Request) {
		subject := r.URL.Query().Get("subject")
		if subject == "" {
			writeJSON(w, http.StatusBadRequest, apiResponse{Message: "provide ?subject=<principal>"})
			return
		}

		resp, err := client.Get(fmt.Sprintf("%s/verification/%s/status", gatewayURL, subject))
		if err != nil {
			writeJSON(w, http.StatusBadGateway, apiResponse{Message: "gateway unreachable", Warning: err.Error()})
			return
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		out := apiResponse{Message: fmt.Sprintf("gateway answered %d", resp.StatusCode)}
		if json.Valid(body) {
			out.Gateway = json.RawMessage(body)
		}
		writeJSON(w, http.StatusOK, out)
	})

	addr := fmt.Sprintf(":%s", port)
	log.Printf("toy relying party listening on %s (gateway %s, threshold %d)", addr, gatewayURL, threshold)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func writeJSON(w http.ResponseWriter, status int, payload apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
