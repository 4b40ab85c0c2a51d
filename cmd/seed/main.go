package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"studiodesk/internal/config"
	"studiodesk/internal/database"
	"studiodesk/internal/domain"
	"studiodesk/internal/pkg/jwt"
	"studiodesk/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config failed:", err)
	}

	operatorID := os.Getenv("SEED_OPERATOR_ID")
	if operatorID == "" {
		operatorID = "operator-demo"
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	ctx := context.Background()

	// Migrate also seeds the enum lookup values.
	log.Println("Running migrations...")
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migrate failed:", err)
	}

	repo := repository.NewBookingRepository(db)

	log.Printf("Cleaning bookings of operator %s...", operatorID)
	existing, err := repo.ListAll(ctx, operatorID)
	if err != nil {
		log.Fatal("list bookings failed:", err)
	}
	for _, b := range existing {
		if _, err := repo.Delete(ctx, operatorID, b.ID); err != nil {
			log.Fatal("delete booking failed:", err)
		}
	}

	log.Println("Creating bookings...")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	loc := cfg.Location()
	today := time.Now().In(loc)

	clients := []struct{ name, phone string }{
		{"Asha Menon", "+91 98450 11223"},
		{"Rahul Verma", "+91 99001 22334"},
		{"Priya Nair", "+91 97400 33445"},
		{"Kabir Shah", "+91 90080 44556"},
		{"Meera Iyer", "+91 98860 55667"},
	}
	locations := []string{"Studio A", "Studio B", "Cubbon Park", "Client venue"}

	// day offset and start clock; two shoots today keep the live view busy
	slots := []struct {
		offset int
		clock  string
	}{
		{-12, "10:00"}, {-5, "16:30"}, {-1, "11:00"},
		{0, "09:30"}, {0, "18:00"},
		{1, "07:00"}, {3, "15:00"}, {9, "12:00"}, {21, "10:30"},
	}

	created := 0
	for i, s := range slots {
		c := clients[i%len(clients)]
		shootType := domain.ShootTypes[rng.Intn(len(domain.ShootTypes))]
		price := float64(15000 + rng.Intn(20)*2500)
		gst := 18.0

		status := domain.BookingConfirmed
		if s.offset < 0 {
			status = domain.BookingCompleted
		} else if s.offset > 7 {
			status = domain.BookingPending
		}

		b := domain.Booking{
			OperatorID:   operatorID,
			ClientName:   c.name,
			Phone:        c.phone,
			Location:     locations[rng.Intn(len(locations))],
			Deliverables: "Edited photos",
			ShootType:    shootType,
			Date:         today.AddDate(0, 0, s.offset).Format("2006-01-02"),
			Time:         s.clock,
			Duration:     60 + rng.Intn(8)*30,
			Price:        &price,
			GST:          &gst,
			Advance:      price * 0.3,
			Status:       status,
			PaymentDone:  status == domain.BookingCompleted,
			InvoiceSent:  status == domain.BookingCompleted,
			CostBreakdown: []domain.CostItem{
				{Label: "Second shooter", Cost: 3000, Vendor: "Freelance"},
				{Label: "Travel", Cost: float64(500 + rng.Intn(5)*250)},
			},
		}
		if _, err := repo.Create(ctx, b); err != nil {
			log.Fatal("create booking failed:", err)
		}
		created++
	}

	token, err := jwt.New(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(operatorID, "Demo Operator")
	if err != nil {
		log.Fatal("token failed:", err)
	}

	log.Printf("Seed completed: %d bookings for %s", created, operatorID)
	fmt.Println(token)
}
