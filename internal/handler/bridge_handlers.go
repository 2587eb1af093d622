package handler

import (
	"context"
	"net/http"
	"time"

	"shelley-server/internal/bridge"
	"shelley-server/internal/eventbus"
	"shelley-server/internal/middleware"
	"shelley-server/internal/models"
	"shelley-server/internal/playerstate"
	"shelley-server/internal/protocol"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// gameBridge is the websocket endpoint one game build connects to. Each
// connection gets its own transport, event bus and progress store; none
// of that state is shared between connections.
func (h *Handler) gameBridge(c *gin.Context) {
	sessionID, ok := middleware.SessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{Error: "Session required"})
		return
	}

	gameName := c.Query("game")
	if gameName == "" {
		gameName = "po_runner"
	}

	upgrader := bridge.Upgrader(h.config.AllowedOrigin)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("Bridge upgrade failed", zap.Error(err))
		return
	}

	gateway := newBridgeGateway(h, sessionID.String(), gameName)
	gateway.run(conn)
}

// bridgeGateway wires one connection's transport, bus and store together
// and holds the host-side reactions to game events.
type bridgeGateway struct {
	handler   *Handler
	bus       *eventbus.Bus
	store     *playerstate.Store
	transport *bridge.Transport
	gameName  string
	logger    *zap.Logger
}

func newBridgeGateway(h *Handler, sessionCookie, gameName string) *bridgeGateway {
	g := &bridgeGateway{
		handler:  h,
		bus:      eventbus.New(h.logger),
		gameName: gameName,
		logger:   h.logger.Named("BridgeGateway").With(zap.String("game", gameName)),
	}
	g.store = playerstate.New(h.config.SelfBaseURL, h.logger, playerstate.WithSessionCookie(sessionCookie))
	g.transport = bridge.New(g.bus.Publish, h.wsLogger)
	return g
}

func (g *bridgeGateway) run(conn *websocket.Conn) {
	unsubscribe := g.bus.Subscribe(g.onEvent)
	defer unsubscribe()

	g.transport.Attach(conn)
	<-g.transport.Done()
	g.logger.Info("Bridge connection closed")
}

// onEvent reacts to each validated event. Progress reporting is fire and
// forget: a dead API never breaks the running game.
func (g *bridgeGateway) onEvent(event protocol.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch ev := event.(type) {
	case protocol.GameReadyEvent:
		g.onGameReady(ctx)

	case protocol.MiniGameCompleteEvent:
		eventType := models.EventCompleted
		if ev.Skipped {
			eventType = models.EventSkipped
		}
		g.store.ReportEvent(ctx, models.GameEvent{
			Type:     eventType,
			GameName: g.gameName,
			Score:    ev.Score,
		})

	case protocol.ScoreUpdateEvent:
		g.store.ReportEvent(ctx, models.GameEvent{
			Type:     models.EventScoreUpdate,
			GameName: g.gameName,
			Score:    ev.Score,
			Picks:    ev.Picks,
			Distance: ev.Distance,
		})

	case protocol.PieceCollectedEvent:
		g.store.ReportEvent(ctx, models.GameEvent{
			Type:       models.EventPieceCollected,
			GameName:   g.gameName,
			PieceIndex: ev.Piece,
			PieceTotal: ev.Total,
		})

	case protocol.OnboardingCompleteEvent:
		g.store.ReportEvent(ctx, models.GameEvent{Type: models.EventOnboardingComplete})

	case protocol.GameSessionEvent:
		g.publishTelemetry(ctx, ev)

	case protocol.GameErrorEvent:
		g.logger.Warn("Game reported error", zap.String("message", ev.Message))

	default:
		// Navigation, HUD and morph events are for other subscribers.
	}
}

// onGameReady pushes host state into the freshly loaded game: progress
// derived config plus the CMS-merged narrative.
func (g *bridgeGateway) onGameReady(ctx context.Context) {
	record := g.store.InitSession(ctx)

	relationship := record.PoRelationship
	played := record.GamesPlayed
	fourthWall := record.FourthWallUnlocked
	g.transport.SendCommand(protocol.ConfigCommand{
		RelationshipLevel:  &relationship,
		GamesPlayed:        &played,
		FourthWallUnlocked: &fourthWall,
	})

	beats, err := g.handler.narrative.Beats(ctx)
	if err != nil {
		g.logger.Warn("Skipping narrative push", zap.Error(err))
		return
	}
	g.transport.SendCommand(protocol.UpdateNarrativeCommand{Beats: beats})
}

func (g *bridgeGateway) publishTelemetry(ctx context.Context, ev protocol.GameSessionEvent) {
	if g.handler.telemetry == nil {
		return
	}
	record := models.GameSessionRecord{
		SessionID:  g.store.SessionID(),
		Action:     ev.Action,
		GameName:   ev.GameName,
		FinalScore: ev.FinalScore,
		Duration:   ev.Duration,
		OccurredAt: time.Now().UTC(),
	}
	if err := g.handler.telemetry.PublishGameSession(ctx, record); err != nil {
		g.logger.Warn("Failed to publish game session telemetry", zap.Error(err))
	}
}
