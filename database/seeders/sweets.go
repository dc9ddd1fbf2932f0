package seeders

import (
	"context"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

func init() {
	Register("sweets", SeedSweets)
}

// SampleSweets is the starter catalogue.
var SampleSweets = []models.Sweet{
	{Name: "Kaju Katli", Category: "Barfi", Price: 12.5, Quantity: 40, Image: "https://images.example.com/sweets/kaju-katli.jpg", Rating: 4.8,
		Description: "Diamond-cut cashew fudge finished with edible silver leaf."},
	{Name: "Gulab Jamun", Category: "Syrup", Price: 4, Quantity: 60, Image: "https://images.example.com/sweets/gulab-jamun.jpg", Rating: 4.7,
		Description: "Milk-solid dumplings soaked in rose and cardamom syrup."},
	{Name: "Rasgulla", Category: "Bengali", Price: 3.5, Quantity: 50, Image: "https://images.example.com/sweets/rasgulla.jpg", Rating: 4.6,
		Description: "Soft chhena balls in a light sugar syrup."},
	{Name: "Motichoor Ladoo", Category: "Ladoo", Price: 6, Quantity: 35, Image: "https://images.example.com/sweets/motichoor-ladoo.jpg", Rating: 4.5,
		Description: "Tiny fried gram-flour pearls bound with ghee and saffron."},
	{Name: "Jalebi", Category: "Fried", Price: 2.5, Quantity: 80, Image: "https://images.example.com/sweets/jalebi.jpg", Rating: 4.4,
		Description: "Crisp spirals of fermented batter dipped in saffron syrup."},
	{Name: "Sandesh", Category: "Bengali", Price: 5, Quantity: 4, Image: "https://images.example.com/sweets/sandesh.jpg", Rating: 4.3,
		Description: models.DefaultDescription},
	{Name: "Dark Chocolate Truffle", Category: "Chocolate", Price: 8, Quantity: 25, Image: "https://images.example.com/sweets/truffle.jpg", Rating: models.DefaultRating,
		Description: "Ganache centre rolled in cocoa."},
}

// SeedSweets inserts SampleSweets when the catalogue is empty.
func SeedSweets(ctx context.Context, store *repositories.Store) error {
	n, err := store.Sweets.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("seed: catalogue not empty, skipping", "sweets", n)
		return nil
	}

	for _, s := range SampleSweets {
		sweet := s
		if err := store.Sweets.Create(ctx, &sweet); err != nil {
			return err
		}
	}
	logger.Info("seed: inserted sample sweets", "count", len(SampleSweets))
	return nil
}
