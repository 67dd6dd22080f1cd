package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/geniumhq/genium-backend/internal/models"
)

func newID() string {
	return uuid.NewString()
}

// SeedDatabase inserts the Sunset Heights demo units and demo brokers.
// It is a no-op when any property already exists.
func (c *DatabaseClient) SeedDatabase(ctx context.Context) (int, int, error) {
	var existing string
	err := c.db.QueryRowContext(ctx, `SELECT id FROM properties LIMIT 1`).Scan(&existing)
	if err == nil {
		return 0, 0, nil
	}
	if err != sql.ErrNoRows {
		return 0, 0, fmt.Errorf("seed check: %w", err)
	}

	for _, p := range seedProperties {
		p.ID = newID()
		const q = `
			INSERT INTO properties
				(id, project_name, unit_type, bedrooms, bathrooms, sqft, price, floor, status, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := c.db.ExecContext(ctx, q,
			p.ID, p.ProjectName, p.UnitType, p.Bedrooms, p.Bathrooms, p.Sqft, p.Price, p.Floor, p.Status, p.Description,
		); err != nil {
			return 0, 0, fmt.Errorf("seed property: %w", err)
		}
	}

	for _, b := range seedBrokers {
		b.ID = newID()
		const q = `
			INSERT INTO brokers (id, phone_number, name, email, authorized)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := c.db.ExecContext(ctx, q,
			b.ID, b.PhoneNumber, b.Name, b.Email, b.Authorized,
		); err != nil {
			return 0, 0, fmt.Errorf("seed broker: %w", err)
		}
	}

	return len(seedProperties), len(seedBrokers), nil
}

var seedProperties = []models.Property{
	{
		ProjectName: "Sunset Heights", UnitType: "2BR", Bedrooms: 2, Bathrooms: 2,
		Sqft: 1200, Price: 298000, Floor: 3, Status: models.StatusAvailable,
		Description: "Spacious 2-bedroom unit with city views, modern finishes, and open-concept living. Includes parking and storage.",
	},
	{
		ProjectName: "Sunset Heights", UnitType: "3BR", Bedrooms: 3, Bathrooms: 2,
		Sqft: 1500, Price: 425000, Floor: 5, Status: models.StatusAvailable,
		Description: "Premium 3-bedroom corner unit with panoramic views, gourmet kitchen, and spacious balcony.",
	},
	{
		ProjectName: "Sunset Heights", UnitType: "Studio", Bedrooms: 0, Bathrooms: 1,
		Sqft: 600, Price: 185000, Floor: 2, Status: models.StatusAvailable,
		Description: "Efficient studio apartment perfect for young professionals. Modern amenities and great location.",
	},
	{
		ProjectName: "Sunset Heights", UnitType: "2BR", Bedrooms: 2, Bathrooms: 2,
		Sqft: 1150, Price: 315000, Floor: 7, Status: models.StatusAvailable,
		Description: "High-floor 2-bedroom with upgraded appliances and in-suite laundry. Pet-friendly building.",
	},
	{
		ProjectName: "Sunset Heights", UnitType: "3BR", Bedrooms: 3, Bathrooms: 3,
		Sqft: 1800, Price: 550000, Floor: 10, Status: models.StatusAvailable,
		Description: "Luxury penthouse-style 3-bedroom with 3 bathrooms, walk-in closets, and premium finishes throughout.",
	},
	{
		ProjectName: "Sunset Heights", UnitType: "1BR", Bedrooms: 1, Bathrooms: 1,
		Sqft: 800, Price: 225000, Floor: 4, Status: models.StatusAvailable,
		Description: "Well-designed 1-bedroom with efficient layout, large windows, and access to building amenities.",
	},
	{
		ProjectName: "Sunset Heights", UnitType: "2BR", Bedrooms: 2, Bathrooms: 2,
		Sqft: 1250, Price: 335000, Floor: 6, Status: models.StatusReserved,
		Description: "Modern 2-bedroom with open kitchen, granite countertops, and city views.",
	},
	{
		ProjectName: "Sunset Heights", UnitType: "3BR", Bedrooms: 3, Bathrooms: 2,
		Sqft: 1600, Price: 475000, Floor: 8, Status: models.StatusAvailable,
		Description: "Family-friendly 3-bedroom with extra storage, large living area, and near schools.",
	},
	{
		ProjectName: "Sunset Heights", UnitType: "1BR", Bedrooms: 1, Bathrooms: 1,
		Sqft: 750, Price: 210000, Floor: 1, Status: models.StatusAvailable,
		Description: "Ground-floor 1-bedroom with private patio access. Perfect for those who prefer easy access.",
	},
	{
		ProjectName: "Sunset Heights", UnitType: "2BR", Bedrooms: 2, Bathrooms: 2,
		Sqft: 1300, Price: 345000, Floor: 9, Status: models.StatusAvailable,
		Description: "Top-floor 2-bedroom with vaulted ceilings, skylights, and modern kitchen with island.",
	},
}

var seedBrokers = []models.Broker{
	{PhoneNumber: "+1234567890", Name: "John Smith", Email: "john.smith@realty.com", Authorized: true},
	{PhoneNumber: "+0987654321", Name: "Sarah Johnson", Email: "sarah.j@realty.com", Authorized: true},
	{PhoneNumber: "+1122334455", Name: "Mike Chen", Email: "mchen@realty.com", Authorized: true},
}
