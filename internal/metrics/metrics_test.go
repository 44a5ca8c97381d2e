package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFetch(t *testing.T) {
	before := testutil.CollectAndCount(FetchDuration)
	ObserveFetch("test-renderer", time.Now(), nil)
	ObserveFetch("test-renderer", time.Now(), errors.New("boom"))
	assert.Equal(t, before+2, testutil.CollectAndCount(FetchDuration))
}

func TestHandlerExposesCounters(t *testing.T) {
	StrategyAttempts.WithLabelValues("json-ld", "success").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recipe_strategy_attempts_total")
}
