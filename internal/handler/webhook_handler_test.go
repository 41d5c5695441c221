package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"album-bot/config"
	"album-bot/internal/domain"
	"album-bot/internal/handler"
	"album-bot/internal/provider/chapa"
	"album-bot/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeScheduler struct {
	scheduled []int64
	full      bool
}

func (f *fakeScheduler) ScheduleDelivery(buyerID int64) bool {
	if f.full {
		return false
	}
	f.scheduled = append(f.scheduled, buyerID)
	return true
}

func newTestServer(scheduler *fakeScheduler) http.Handler {
	chapaProvider := chapa.NewProvider(config.ChapaConfig{SecretKey: "test", BaseURL: "http://unused"})
	h := handler.NewWebhookHandler(chapaProvider, scheduler, zap.NewNop())
	return router.SetupRoutes(h, zap.NewNop())
}

func postCallback(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, config.WebhookPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestSuccessCallbackSchedulesDelivery(t *testing.T) {
	scheduler := &fakeScheduler{}
	srv := newTestServer(scheduler)

	txRef := domain.EncodeTxRef(42, "album")
	rec := postCallback(t, srv, fmt.Sprintf(`{"status":"success","tx_ref":%q}`, txRef))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, scheduler.scheduled, 1)
	assert.Equal(t, int64(42), scheduler.scheduled[0])
}

func TestFailedCallbackSchedulesNothing(t *testing.T) {
	scheduler := &fakeScheduler{}
	srv := newTestServer(scheduler)

	txRef := domain.EncodeTxRef(42, "album")
	rec := postCallback(t, srv, fmt.Sprintf(`{"status":"failed","tx_ref":%q}`, txRef))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, scheduler.scheduled)
}

func TestGarbageTxRefIsAckedWithoutDelivery(t *testing.T) {
	scheduler := &fakeScheduler{}
	srv := newTestServer(scheduler)

	rec := postCallback(t, srv, `{"status":"success","tx_ref":"garbage"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, scheduler.scheduled)
}

func TestUnparseableBodyIsAcked(t *testing.T) {
	scheduler := &fakeScheduler{}
	srv := newTestServer(scheduler)

	rec := postCallback(t, srv, `not json at all`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, scheduler.scheduled)
}

// A repeated success callback schedules delivery again: there is no dedup
// store, so a gateway retry grants a second invite. Known gap, kept as the
// documented behavior.
func TestDuplicateCallbackDeliversTwice(t *testing.T) {
	scheduler := &fakeScheduler{}
	srv := newTestServer(scheduler)

	txRef := domain.EncodeTxRef(42, "album")
	body := fmt.Sprintf(`{"status":"success","tx_ref":%q}`, txRef)

	postCallback(t, srv, body)
	postCallback(t, srv, body)

	assert.Equal(t, []int64{42, 42}, scheduler.scheduled)
}

func TestFullQueueStillAcks(t *testing.T) {
	scheduler := &fakeScheduler{full: true}
	srv := newTestServer(scheduler)

	txRef := domain.EncodeTxRef(42, "album")
	rec := postCallback(t, srv, fmt.Sprintf(`{"status":"success","tx_ref":%q}`, txRef))

	assert.Equal(t, http.StatusOK, rec.Code, "gateway must not be provoked into retries")
}

func TestLivenessProbeOnAnyPath(t *testing.T) {
	srv := newTestServer(&fakeScheduler{})

	for _, path := range []string{"/", "/healthz", "/some/random/path"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "GET %s", path)
		assert.Equal(t, "OK", rec.Body.String(), "GET %s", path)
	}
}
