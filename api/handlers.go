package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"talentapi/metrics"
	"talentapi/version"
)

// readinessTimeout bounds a single dependency probe
const readinessTimeout = 2 * time.Second

// MessageResponse is the payload returned by the root endpoint
type MessageResponse struct {
	Message string `json:"message" example:"Hello, World!"`
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status  string `json:"status"`
	Env     string `json:"env"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// ReadinessResponse reports the state of every configured dependency
type ReadinessResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// index godoc
//
//	@Summary	Greeting
//	@Tags		root
//	@Produce	json
//	@Success	200	{object}	MessageResponse
//	@Router		/ [get]
func (a *API) index(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, MessageResponse{Message: "Hello, World!"}, http.StatusOK)
}

// healthCheck godoc
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, HealthResponse{
		Status:  "healthy",
		Env:     a.config.Env,
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// readinessCheck godoc
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	ReadinessResponse
//	@Failure	503	{object}	ReadinessResponse
//	@Router		/health/ready [get]
func (a *API) readinessCheck(w http.ResponseWriter, r *http.Request) {
	results := a.probeDependencies(r.Context())

	resp := ReadinessResponse{Status: "ready", Dependencies: make(map[string]string, len(results))}
	status := http.StatusOK
	for name, err := range results {
		if err != nil {
			resp.Dependencies[name] = "down"
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			a.logger.Warnw("Dependency not ready",
				"request_id", GetRequestIDOrDefault(r.Context()),
				"dependency", name,
				"error", err)
			continue
		}
		resp.Dependencies[name] = "up"
	}

	a.respondJSON(w, resp, status)
}

// probeDependencies pings every check concurrently
func (a *API) probeDependencies(ctx context.Context) map[string]error {
	results := make(map[string]error, len(a.checks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, check := range a.checks {
		wg.Add(1)
		go func(c Pinger) {
			defer wg.Done()
			pingCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
			defer cancel()

			err := c.Ping(pingCtx)
			if err != nil {
				metrics.DependencyUp.WithLabelValues(c.Name()).Set(0)
			} else {
				metrics.DependencyUp.WithLabelValues(c.Name()).Set(1)
			}

			mu.Lock()
			results[c.Name()] = err
			mu.Unlock()
		}(check)
	}
	wg.Wait()

	return results
}
