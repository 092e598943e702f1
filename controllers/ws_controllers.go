package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dineflow/pos-backend/realtime"
	"github.com/dineflow/pos-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type StreamController struct {
	Hub       *realtime.Hub
	Publisher realtime.Publisher
}

func NewStreamController(hub *realtime.Hub, publisher realtime.Publisher) *StreamController {
	return &StreamController{Hub: hub, Publisher: publisher}
}

// Stream upgrades the connection and subscribes it to the outlet's event
// feed. Floor and station come from query params so one kitchen display can
// watch just its own station.
func (sc *StreamController) Stream(c *gin.Context) {
	actor := actorFrom(c)

	sub := realtime.Subscription{
		OutletID: actor.OutletID,
		Role:     actor.Role,
		Station:  c.Query("station"),
	}
	if raw := c.Query("floor_id"); raw != "" {
		floorID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		sub.FloorID = uint(floorID)
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade: %v", err)
		return
	}

	sc.Hub.Register(ws, sub)
	utils.InfoLogger.Printf("websocket client connected (outlet %d, role %s)", sub.OutletID, sub.Role)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	sc.Hub.Unregister(ws)
}

// Health reports process liveness and the broker link state.
func (sc *StreamController) Health(c *gin.Context) {
	status := http.StatusOK
	broker := "ok"
	if !sc.Publisher.Healthy() {
		status = http.StatusServiceUnavailable
		broker = "degraded"
	}
	c.JSON(status, gin.H{
		"status": "up",
		"broker": broker,
	})
}
