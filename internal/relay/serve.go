package relay

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the relay trusts the HTTP layer's auth; browsers on any origin may
	// connect and only receive what the rooms they join carry
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades GET /ws into a relay session.
func Handler(registry *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("relay: upgrade failed: %v", err)
			return
		}
		client := NewClient(registry, conn)
		go client.Run()
	}
}
