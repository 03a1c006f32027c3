package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"diskpanel/internal/config"
	"diskpanel/internal/models"
	"diskpanel/internal/services"
)

// failingCapability is present but its query always fails
type failingCapability struct{}

func (failingCapability) Name() string    { return "wmic" }
func (failingCapability) Available() bool { return true }
func (failingCapability) Query(context.Context) (string, error) {
	return "", errors.New("access denied")
}

var tokenPattern = regexp.MustCompile(`token: "([^"]+)"`)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Address:   "127.0.0.1:0",
			RateLimit: 1000,
			RateBurst: 1000,
		},
		DataSource: config.DataSourceConfig{Mode: config.ModeSample, Timeout: time.Second},
		Session:    config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef", TTL: time.Minute},
		Log:        config.LogConfig{Level: "info", Format: "console"},
	}
}

// RouterTestSuite exercises the HTTP surface against the sample data set
type RouterTestSuite struct {
	suite.Suite
	server *Server
}

func (s *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *RouterTestSuite) SetupTest() {
	server, err := NewServer(testConfig(), nil, prometheus.NewRegistry())
	s.Require().NoError(err)
	s.server = server
}

func (s *RouterTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "127.0.0.1:40000"
	w := httptest.NewRecorder()
	s.server.Engine.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) refresh() *models.VolumeSnapshot {
	w := s.get("/api/volumes")
	s.Require().Equal(http.StatusOK, w.Code)

	var snap models.VolumeSnapshot
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &snap))
	return &snap
}

func (s *RouterTestSuite) TestDashboard() {
	w := s.get("/")

	s.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Contains(body, "Total Used Space: 2150.00 GB")
	s.Contains(body, "Total Free Space: 1350.00 GB")
	s.Contains(body, `id="partitions-table"`)
	s.Regexp(tokenPattern, body)
	s.Equal("DENY", w.Header().Get("X-Frame-Options"))
	s.Equal(1, s.server.Pipeline.Store().Len())
}

func (s *RouterTestSuite) TestDashboardUnavailable() {
	server, err := NewServer(testConfig(), failingCapability{}, prometheus.NewRegistry())
	s.Require().NoError(err)
	s.server = server

	w := s.get("/")
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Contains(w.Body.String(), "access denied")

	w = s.get("/api/volumes")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *RouterTestSuite) TestVolumesAndSnapshot() {
	snap := s.refresh()
	s.True(snap.Fallback)
	s.Len(snap.Records, 3)
	s.Equal(2150.0, snap.Totals.TotalUsedGB)

	w := s.get("/api/snapshots/" + snap.ID)
	s.Equal(http.StatusOK, w.Code)

	var stored models.VolumeSnapshot
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &stored))
	s.Equal(snap.ID, stored.ID)
	s.Equal(snap.Records, stored.Records)
}

func (s *RouterTestSuite) TestSnapshotLookupErrors() {
	s.Equal(http.StatusBadRequest, s.get("/api/snapshots/not-a-uuid").Code)
	s.Equal(http.StatusNotFound, s.get("/api/snapshots/3f1c2a9e-7b4d-4c1e-9a2f-1b2c3d4e5f60").Code)
}

func (s *RouterTestSuite) TestSnapshotTable() {
	snap := s.refresh()

	var payload struct {
		Sort models.SortState `json:"sort"`
		Rows []struct {
			Cells []string `json:"cells"`
		} `json:"rows"`
	}

	w := s.get("/api/snapshots/" + snap.ID + "/table?sort=used&order=desc")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &payload))
	s.Equal(models.SortState{ActiveKey: models.SortByUsed, Ascending: false}, payload.Sort)
	s.Require().Len(payload.Rows, 3)
	s.Equal("E:", payload.Rows[0].Cells[0])

	w = s.get("/api/snapshots/" + snap.ID + "/table")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &payload))
	s.False(payload.Sort.Sorted())
	s.Equal("C:", payload.Rows[0].Cells[0])

	s.Equal(http.StatusBadRequest, s.get("/api/snapshots/"+snap.ID+"/table?sort=size").Code)
	s.Equal(http.StatusBadRequest, s.get("/api/snapshots/"+snap.ID+"/table?sort=used&order=up").Code)
}

func (s *RouterTestSuite) TestMetricsEndpoint() {
	s.refresh()

	w := s.get("/metrics")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `diskpanel_volume_fetch_total{outcome="success",source="sample"} 1`)
}

func (s *RouterTestSuite) TestStaticAssets() {
	w := s.get("/static/dashboard.js")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "WebSocket")
}

func (s *RouterTestSuite) TestWebSocketRejectsBadToken() {
	s.Equal(http.StatusUnauthorized, s.get("/ws").Code)
	s.Equal(http.StatusUnauthorized, s.get("/ws?token=aaaaaaaaaaaa.bbbbbbbbbbbb.cccccccccccc").Code)
}

func (s *RouterTestSuite) TestWebSocketSortSession() {
	defer goleak.VerifyNone(s.T(),
		goleak.IgnoreCurrent(),
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)

	ts := httptest.NewServer(s.server.Engine)
	defer ts.Close()

	client := &http.Client{}
	defer client.CloseIdleConnections()

	resp, err := client.Get(ts.URL + "/")
	s.Require().NoError(err)
	var page strings.Builder
	_, err = io.Copy(&page, resp.Body)
	resp.Body.Close()
	s.Require().NoError(err)

	match := tokenPattern.FindStringSubmatch(page.String())
	s.Require().Len(match, 2)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + match[1]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err)
	defer conn.Close()

	type tableMessage struct {
		Type  string `json:"type"`
		Error string `json:"error"`
		Data  struct {
			Sort models.SortState `json:"sort"`
			Rows []struct {
				Cells []string `json:"cells"`
			} `json:"rows"`
		} `json:"data"`
	}

	var msg tableMessage
	s.Require().NoError(conn.ReadJSON(&msg))
	s.Equal(services.MessageTable, msg.Type)
	s.False(msg.Data.Sort.Sorted())
	s.Equal(1, s.server.Hub.Count())

	for _, want := range []struct {
		first     string
		ascending bool
	}{
		{"C:", true},
		{"E:", false},
	} {
		s.Require().NoError(conn.WriteJSON(services.WebSocketMessage{Type: services.MessageSort, Key: "used"}))
		s.Require().NoError(conn.ReadJSON(&msg))
		s.Require().Equal(services.MessageTable, msg.Type, msg.Error)
		s.Equal(want.ascending, msg.Data.Sort.Ascending)
		s.Equal(want.first, msg.Data.Rows[0].Cells[0])
	}

	s.Require().NoError(conn.WriteJSON(services.WebSocketMessage{Type: services.MessageSort, Key: "bogus"}))
	s.Require().NoError(conn.ReadJSON(&msg))
	s.Equal(services.MessageError, msg.Type)

	s.Require().NoError(conn.WriteJSON(services.WebSocketMessage{Type: services.MessageUnsubscribe}))
	s.Eventually(func() bool { return s.server.Hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
