package main

import (
	"context"
	"fmt"

	"propertydesk/internal/config"
	"propertydesk/internal/database"
	"propertydesk/internal/domain"
	"propertydesk/internal/pkg/logger"
	"propertydesk/internal/repository"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log, closer := logger.New(logger.Options{Level: cfg.LogLevel})
	defer closer.Close()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}

	log.Info("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("AutoMigrate failed")
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Info("Cleaning old data...")
	for _, table := range []string{"payments", "invoice_items", "invoices", "tasks", "bookings", "tenants", "rooms", "exchange_rates", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.WithError(err).WithField("table", table).Fatal("cleanup failed")
		}
	}

	ctx := context.Background()

	// ================== USERS ==================
	users := repository.NewUserRepository(db)
	staff := []struct {
		email    string
		password string
		name     string
		role     domain.UserRole
	}{
		{"admin@propertydesk.cd", "admin123", "Administrateur", domain.RoleAdmin},
		{"manager@propertydesk.cd", "manager123", "Gérant", domain.RoleManager},
		{"reception@propertydesk.cd", "reception123", "Réception", domain.RoleReceptionist},
	}
	var adminID int64
	for _, s := range staff {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			log.WithError(err).Fatal("hash password")
		}
		u := &domain.User{Email: s.email, PasswordHash: string(hash), Name: s.name, Role: s.role, IsActive: true}
		if err := users.Create(ctx, u); err != nil {
			log.WithError(err).Fatal("create user")
		}
		if s.role == domain.RoleAdmin {
			adminID = u.ID
		}
		log.Infof("User created: %s / %s", s.email, s.password)
	}

	// ================== ROOMS ==================
	rooms := repository.NewRoomRepository(db)
	layout := []struct {
		typ      domain.RoomType
		capacity int
		nightly  float64
	}{
		{domain.RoomSingle, 1, 35},
		{domain.RoomDouble, 2, 50},
		{domain.RoomDouble, 2, 55},
		{domain.RoomStudio, 2, 70},
		{domain.RoomSuite, 4, 120},
	}
	for floor := 1; floor <= 2; floor++ {
		for i, l := range layout {
			room := &domain.Room{
				Number:       fmt.Sprintf("%d%02d", floor, i+1),
				Type:         l.typ,
				Floor:        floor,
				Capacity:     l.capacity,
				NightlyPrice: l.nightly,
				WeeklyPrice:  l.nightly * 6,
				MonthlyPrice: l.nightly * 22,
				Equipment:    []string{"wifi", "tv"},
				Status:       domain.RoomAvailable,
			}
			if err := rooms.Create(ctx, room); err != nil {
				log.WithError(err).Fatal("create room")
			}
		}
	}
	log.Infof("Rooms created: %d", 2*len(layout))

	// ================== TENANTS ==================
	tenants := repository.NewTenantRepository(db)
	for _, t := range []domain.Tenant{
		{FullName: "Amani Kabila", Phone: "+243 810 000 001", Nationality: "CD"},
		{FullName: "Grace Mbuyi", Phone: "+243 820 000 002", Email: "grace@example.cd", Nationality: "CD"},
		{FullName: "Jean Dupont", Phone: "+33 6 00 00 00 03", Nationality: "FR"},
	} {
		if err := tenants.Create(ctx, &t); err != nil {
			log.WithError(err).Fatal("create tenant")
		}
	}

	// ================== EXCHANGE RATE ==================
	rate := &domain.ExchangeRate{CdfPerUsd: cfg.DefaultExchangeRate, SetBy: adminID}
	if err := repository.NewExchangeRateRepository(db).Create(ctx, rate); err != nil {
		log.WithError(err).Fatal("create exchange rate")
	}
	log.Infof("Exchange rate set: 1 USD = %.2f CDF", rate.CdfPerUsd)

	log.Info("Seed completed")
}
