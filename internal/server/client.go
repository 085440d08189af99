package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// command is what a stream client may send.
type command struct {
	Action string `json:"action"` // evacuate, pause, resume or frame
}

// client pumps frames from the hub to one WebSocket and drill commands back.
type client struct {
	id   string
	srv  *Server
	conn *websocket.Conn
	send chan message
	log  *logrus.Entry
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		srv:  s,
		conn: conn,
	}
	c.log = s.log.WithField("client_id", c.id)
	c.send = s.hub.register(c.id)
	c.log.Info("stream client connected")

	// The first frame is current state, so a client never waits a tick.
	s.hub.sendTo(c.id, frameMessage(s.sim.Frame()))

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.srv.hub.unregister(c.id)
		if err := c.conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.Info("stream client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("websocket read failed")
			}
			return
		}
		c.handle(cmd)
	}
}

func (c *client) handle(cmd command) {
	s := c.srv
	switch cmd.Action {
	case "evacuate":
		s.startDrill()
	case "pause":
		s.sim.Pause()
	case "resume":
		s.sim.Resume()
	case "frame":
	default:
		s.hub.sendTo(c.id, message{Type: "error", Error: "unknown action " + cmd.Action})
		return
	}
	s.hub.sendTo(c.id, frameMessage(s.sim.Frame()))
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
