// Command flag_checkouts marks occupied rooms whose stay reached its planned
// end as PENDING_CHECKOUT. Meant to run from cron shortly after the hotel's
// checkout hour.
package main

import (
	"context"
	"time"

	"propertydesk/internal/config"
	"propertydesk/internal/database"
	"propertydesk/internal/modules/board"
	"propertydesk/internal/modules/room"
	"propertydesk/internal/pkg/events"
	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/repository"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log, closer := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, JSON: cfg.IsProduction()})
	defer closer.Close()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		if p, err := events.DialAMQP(cfg.AMQPURL, log); err != nil {
			log.WithError(err).Warn("amqp unavailable, room events not published")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	// no websocket clients in this process; the board service only logs
	boardService := board.NewService(roomRepo, bookingRepo, board.NewHub(), log)
	rooms := room.NewService(roomRepo, bookingRepo, boardService, publisher, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	flagged, err := rooms.FlagCheckouts(ctx, time.Now())
	if err != nil {
		log.WithError(err).Fatal("flag checkouts failed")
	}
	for _, f := range flagged {
		log.WithFields(logrus.Fields{"room": f.RoomNumber, "booking_id": f.BookingID}).Info("room pending checkout")
	}
	log.WithField("count", len(flagged)).Info("checkout flagging completed")
}
