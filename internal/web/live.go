package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/stopwatch/internal/logger"
	"github.com/sweeney/stopwatch/internal/status"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// LiveFrame is the compact state pushed over /ws.
type LiveFrame struct {
	Version   uint64 `json:"version"`
	Time      string `json:"time"`
	Digits    []int  `json:"digits"`
	Mode      string `json:"mode"`
	Status    string `json:"status"`
	Alarm     bool   `json:"alarm"`
	CountUp   bool   `json:"count_up"`
	CountDown bool   `json:"count_down"`
}

func liveFrame(snap status.Snapshot) LiveFrame {
	st := snap.State
	return LiveFrame{
		Version:   snap.Version,
		Time:      st.Time.String(),
		Digits:    status.DigitsOf(st.Time),
		Mode:      string(st.Mode),
		Status:    string(st.Status),
		Alarm:     st.Outputs.Alarm,
		CountUp:   st.Outputs.CountUp,
		CountDown: st.Outputs.CountDown,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  256,
	WriteBufferSize: 1024,
}

// handleLive sends a frame on connect and again whenever the tracker's
// state version changes. The feed is read-only; client messages are
// discarded.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debugf("web: websocket upgrade: %v", err)
		return
	}
	defer ws.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		ws.SetReadLimit(512)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snap := s.tracker.Snapshot()
	if err := s.writeFrame(ws, snap); err != nil {
		return
	}
	last := snap.Version

	poll := time.NewTicker(s.liveInterval)
	defer poll.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-poll.C:
			if s.tracker.Version() == last {
				continue
			}
			snap := s.tracker.Snapshot()
			if err := s.writeFrame(ws, snap); err != nil {
				return
			}
			last = snap.Version
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-s.quit:
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (s *Server) writeFrame(ws *websocket.Conn, snap status.Snapshot) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(liveFrame(snap)); err != nil {
		logger.Debugf("web: websocket write: %v", err)
		return err
	}
	return nil
}
