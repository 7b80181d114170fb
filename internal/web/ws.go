package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"weekcal/internal/grid"
	appLog "weekcal/internal/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	wsPongWait   = wsPingPeriod + 10*time.Second
)

// handleWS sends the current grid on connect and again after every
// change. Only the newest pending grid is kept for slow clients.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		appLog.Warn("websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	updates := make(chan grid.Snapshot, 1)
	unsubscribe := s.pub.Subscribe(func(snap grid.Snapshot) {
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- snap:
		default:
		}
	})
	defer unsubscribe()

	// 클라이언트 메시지는 사용하지 않지만, close/pong 처리를 위해 읽기 루프는 필요하다.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.writeView(conn, s.pub.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if err := s.writeView(conn, snap); err != nil {
				appLog.Debug("websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeView(conn *websocket.Conn, snap grid.Snapshot) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(buildView(s.grid, snap))
}
