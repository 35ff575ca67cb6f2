// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/collator/api/staking"
	"github.com/vechain/collator/api/subscriptions"
	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/keys"
	"github.com/vechain/collator/metrics"
	"github.com/vechain/collator/staker"
	"github.com/vechain/collator/test/datagen"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

type testBackend struct {
	event.Feed
	s *staker.Staker
}

func (b *testBackend) Read(f func(*staker.Staker) error) error {
	return f(b.s)
}

func (b *testBackend) SubscribeEvents(ch chan *subscriptions.EventMessage) event.Subscription {
	return b.Subscribe(ch)
}

func newTestBackend(t *testing.T) *testBackend {
	s, err := staker.New(
		staker.DefaultParams(),
		staker.ClockFunc(func() uint32 { return 1 }),
		keys.NewMemRegistry(),
		custodian.NewBank(1),
		nil,
	)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(staker.Genesis{CandidacyBond: 10, MinStake: 2, DesiredCandidates: 2}))
	return &testBackend{s: s}
}

func TestMetricsMiddleware(t *testing.T) {
	router := mux.NewRouter()
	staking.New(newTestBackend(t)).Mount(router, "/staking")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	defer ts.Close()

	_, code := httpGet(t, ts.URL+"/staking/params")
	assert.Equal(t, http.StatusOK, code)
	_, code = httpGet(t, ts.URL+"/staking/stakes/0x")
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpGet(t, ts.URL+"/staking/candidates/"+datagen.RandAddress().String())
	assert.Equal(t, http.StatusNotFound, code)

	families := scrape(t, ts.URL)
	m := families["collator_api_request_count"].GetMetric()
	require.Len(t, m, 3)

	for i, want := range []struct{ code, name string }{
		{"200", "GET /staking/params"},
		{"400", "GET /staking/stakes/{staker}"},
		{"404", "GET /staking/candidates/{account}"},
	} {
		assert.Equal(t, float64(1), m[i].GetCounter().GetValue())
		labels := m[i].GetLabel()
		require.Len(t, labels, 3)
		assert.Equal(t, "code", labels[0].GetName())
		assert.Equal(t, want.code, labels[0].GetValue())
		assert.Equal(t, "method", labels[1].GetName())
		assert.Equal(t, "GET", labels[1].GetValue())
		assert.Equal(t, "name", labels[2].GetName())
		assert.Equal(t, want.name, labels[2].GetValue())
	}
	assert.Equal(t, uint64(3), families["collator_api_duration_ms"].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestWebsocketMetrics(t *testing.T) {
	router := mux.NewRouter()
	subs := subscriptions.New(newTestBackend(t), []string{"*"})
	subs.Mount(router, "/subscriptions")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	defer ts.Close()
	defer subs.Close()

	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/events"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		families := scrape(t, ts.URL)
		active := families["collator_api_active_subscriptions"].GetMetric()
		return len(active) == 1 && active[0].GetGauge().GetValue() == 1
	}, 5*time.Second, 10*time.Millisecond)

	var upgraded *dto.Metric
	for _, m := range scrape(t, ts.URL)["collator_api_request_count"].GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "name" && l.GetValue() == "WS /subscriptions/events" {
				upgraded = m
			}
		}
	}
	require.NotNil(t, upgraded)
	assert.Equal(t, "101", upgraded.GetLabel()[0].GetValue())
}

func scrape(t *testing.T, base string) map[string]*dto.MetricFamily {
	body, code := httpGet(t, base+"/metrics")
	require.Equal(t, http.StatusOK, code)
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)
	return families
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}
