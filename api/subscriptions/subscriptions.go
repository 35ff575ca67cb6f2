// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/collator/api/utils"
	"github.com/vechain/collator/co"
	"github.com/vechain/collator/log"
	"github.com/vechain/collator/metrics"
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveSubscriptions = metrics.LazyLoadGauge("api_active_subscriptions")
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = pongWait * 7 / 10
	eventBufferSize = 256
)

// Feed delivers engine events as they happen.
type Feed interface {
	SubscribeEvents(ch chan *EventMessage) event.Subscription
}

type Subscriptions struct {
	feed     Feed
	upgrader *websocket.Upgrader
	routines *co.Stoppable
}

func New(feed Feed, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		feed: feed,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, strings.ToLower(origin))
			},
		},
		routines: co.NewStoppable(),
	}
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	filter := make(nameFilter)
	if names := req.URL.Query().Get("names"); names != "" {
		for name := range strings.SplitSeq(names, ",") {
			filter[strings.TrimSpace(name)] = struct{}{}
		}
	}

	if s.routines.Stopped() {
		return utils.HTTPError(errors.New("subscriptions closed"), http.StatusServiceUnavailable)
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already replied
		logger.Debug("websocket upgrade failed", "err", err)
		return nil
	}

	ch := make(chan *EventMessage, eventBufferSize)
	sub := s.feed.SubscribeEvents(ch)

	metricActiveSubscriptions().Add(1)
	accepted := s.routines.Go(func(stop <-chan struct{}) {
		defer metricActiveSubscriptions().Add(-1)
		defer sub.Unsubscribe()
		if err := pipe(conn, sub, ch, filter, stop); err != nil {
			logger.Debug("subscription closed", "remote", req.RemoteAddr, "err", err)
		}
	})
	if !accepted {
		// closed between the check above and the upgrade
		metricActiveSubscriptions().Add(-1)
		sub.Unsubscribe()
		_ = closeConn(conn, "server shutting down")
		conn.Close()
	}
	return nil
}

// pipe writes matching messages to conn until the peer goes away or the feed ends.
func pipe(conn *websocket.Conn, sub event.Subscription, ch <-chan *EventMessage, filter nameFilter, stop <-chan struct{}) error {
	closed := make(chan struct{})
	var reader co.Goes
	reader.Go(func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			// control frames are handled while reading, anything else is dropped
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer func() {
		conn.Close()
		reader.Wait()
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-ch:
			if !filter.Match(msg) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case err := <-sub.Err():
			if err != nil {
				return err
			}
			return closeConn(conn, "feed closed")
		case <-closed:
			return nil
		case <-stop:
			return closeConn(conn, "server shutting down")
		}
	}
}

func closeConn(conn *websocket.Conn, reason string) error {
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, reason),
		time.Now().Add(writeWait),
	)
}

// Close ends every open subscription and waits for them to finish.
func (s *Subscriptions) Close() {
	s.routines.Stop()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
