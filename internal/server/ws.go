package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/coreman2200/funtimes-ftmixer/internal/controls"
	"github.com/coreman2200/funtimes-ftmixer/internal/ports"
	"github.com/coreman2200/funtimes-ftmixer/internal/region"
	"github.com/coreman2200/funtimes-ftmixer/internal/session"
)

const (
	writeWait   = 200 * time.Millisecond
	eventBuffer = 64
)

// ControlMsg is one UI input received on /ws/control.
type ControlMsg struct {
	Type    string  `json:"type"`
	Surface int     `json:"surface,omitempty"`
	Slot    int     `json:"slot,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Button  int     `json:"button,omitempty"`
	ID      string  `json:"id,omitempty"`
	Value   any     `json:"value,omitempty"`
	Port    int     `json:"port,omitempty"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`

	Region *region.Region `json:"region,omitempty"`
}

// Control message types.
const (
	MsgPointerDown  = "pointer_down"
	MsgPointerMove  = "pointer_move"
	MsgPointerUp    = "pointer_up"
	MsgPointerLeave = "pointer_leave"
	MsgBCDown       = "bc_down"
	MsgControl      = "control"
	MsgSwitchPort   = "switch_port"
	MsgRefreshMix   = "refresh_mix"
	MsgResize       = "resize"
	MsgSnapshot     = "snapshot"
	MsgSetRegion    = "set_region"
	MsgRefreshComp  = "refresh_component"
)

type controlReply struct {
	Type     string            `json:"type"`
	Error    string            `json:"error,omitempty"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
}

// applyControl routes one message to the session. A nil reply means nothing
// is sent back.
func (s *Server) applyControl(msg ControlMsg) (*controlReply, error) {
	switch msg.Type {
	case MsgPointerDown:
		return nil, s.sess.PointerDown(msg.Surface, msg.X, msg.Y)
	case MsgPointerMove:
		s.sess.PointerMove(msg.X, msg.Y)
	case MsgPointerUp:
		s.sess.PointerUp()
	case MsgPointerLeave:
		s.sess.PointerLeave(msg.Surface)
	case MsgBCDown:
		s.sess.BCDown(msg.Slot, msg.Button, msg.X, msg.Y)
	case MsgControl:
		return nil, s.sess.SetControl(controls.ID(msg.ID), msg.Value)
	case MsgSwitchPort:
		return nil, s.sess.SwitchPort(ports.PortID(msg.Port))
	case MsgRefreshMix:
		s.sess.RefreshMix()
	case MsgResize:
		return nil, s.sess.Resize(msg.Surface, msg.Width, msg.Height)
	case MsgSetRegion:
		if msg.Region == nil {
			return nil, fmt.Errorf("%s: missing region", msg.Type)
		}
		s.sess.SetRegion(*msg.Region)
	case MsgRefreshComp:
		return nil, s.sess.RefreshComponent(msg.Slot)
	case MsgSnapshot:
		snap := s.sess.Snapshot()
		return &controlReply{Type: MsgSnapshot, Snapshot: &snap}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil, nil
}

func (s *Server) handleControlWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("control upgrade")
		return
	}
	defer conn.Close()
	s.log.Info().Str("remote", c.Request.RemoteAddr).Msg("control client connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug().Err(err).Msg("bad control message")
			continue
		}
		reply, err := s.applyControl(msg)
		if err != nil {
			s.log.Debug().Err(err).Str("type", msg.Type).Msg("control rejected")
			reply = &controlReply{Type: "error", Error: err.Error()}
		}
		if reply == nil {
			continue
		}
		b, _ := json.Marshal(reply)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// handleEventsWS pushes a snapshot on connect, then every session event.
// Slow clients lose events rather than stall the session.
func (s *Server) handleEventsWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("events upgrade")
		return
	}
	defer conn.Close()

	send := make(chan []byte, eventBuffer)
	snap := s.sess.Snapshot()
	first, _ := json.Marshal(controlReply{Type: MsgSnapshot, Snapshot: &snap})
	send <- first

	id := s.sess.Subscribe(func(ev session.Event) {
		b, err := json.Marshal(ev)
		if err != nil {
			return
		}
		select {
		case send <- b:
		default:
			s.log.Debug().Str("kind", string(ev.Kind)).Msg("events client behind; dropped")
		}
	})
	defer s.sess.Unsubscribe(id)
	lg := s.log.With().Str("client", id).Logger()
	lg.Info().Msg("events client connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			lg.Info().Msg("events client gone")
			return
		case b := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				lg.Debug().Err(err).Msg("write event")
				return
			}
		}
	}
}
