package bookings

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"trekora_back_end/internal/database"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Le contrôle d'origine est déjà fait par le middleware CORS
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchAvailability pousse en continu la disponibilité d'un départ vers le
// navigateur. Chaque réservation confirmée publie sur le canal Redis du
// couple (tour, jour), relayé ici tel quel.
func WatchAvailability(c *gin.Context) {
	tourID := c.Param("id")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'date' manquant"})
		return
	}

	startDate, err := parseDate(date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide, attendu RFC3339 ou YYYY-MM-DD"})
		return
	}
	day := startDate.UTC().Format("2006-01-02")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("❌ Upgrade websocket échoué:", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := database.Redis.Subscribe(ctx, availabilityChannel(tourID, day))
	defer sub.Close()

	// Détecte la fermeture côté client
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	// État initial à la connexion
	publishAvailability(tourID, day)

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
