package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

const (
	DefaultTenantID    = "11111111-1111-1111-1111-111111111111"
	DefaultTenantEmail = "demo.tenant@hostel.local"
	// DefaultTenantPassword only exists in databases seeded for testing.
	DefaultTenantPassword = "Demo#Tenant1"

	sentinelRoomNumber = 101
)

var seedRooms = []models.Room{
	{RoomNumber: 101, RoomType: "Single", BedCount: 1, Price: 1500000},
	{RoomNumber: 102, RoomType: "Single", BedCount: 1, Price: 1500000},
	{RoomNumber: 201, RoomType: "Double", BedCount: 2, Price: 2400000},
	{RoomNumber: 202, RoomType: "Double", BedCount: 2, Price: 2400000},
	{RoomNumber: 301, RoomType: "Dormitory", BedCount: 4, Price: 900000},
}

var seedTechnicians = []models.Technician{
	{Name: "Peter Otieno", Email: "peter.plumber@hostel.local", PhoneNumber: "+254700000001", Specialty: models.CategoryPlumbing},
	{Name: "Grace Wanjiru", Email: "grace.electric@hostel.local", PhoneNumber: "+254700000002", Specialty: models.CategoryElectrical},
	{Name: "Samuel Kiptoo", Email: "samuel.it@hostel.local", PhoneNumber: "+254700000003", Specialty: models.CategoryInternet},
}

// SeedAllTestData creates demo rooms, technicians and a verified tenant. It is
// a no-op when the sentinel room already exists.
func SeedAllTestData(
	ctx context.Context,
	rooms repositories.RoomRepository,
	tenants repositories.TenantRepository,
	technicians repositories.TechnicianRepository,
) error {
	if existing, err := rooms.GetByNumber(ctx, sentinelRoomNumber); err != nil {
		return fmt.Errorf("check existing seed room: %w", err)
	} else if existing != nil {
		utils.Logger.Info("seeding: seed data already present; skipping")
		return nil
	}

	for _, r := range seedRooms {
		room := r
		room.ID = uuid.New()
		room.Status = models.RoomStatusAvailable
		if err := rooms.Create(ctx, &room); err != nil {
			if errors.Is(err, repositories.ErrRoomNumberExists) {
				continue
			}
			return fmt.Errorf("insert seed room %d: %w", room.RoomNumber, err)
		}
	}

	for _, t := range seedTechnicians {
		tech := t
		tech.ID = uuid.New()
		tech.AssignmentStatus = models.TechnicianUnassigned
		if err := technicians.Create(ctx, &tech); err != nil {
			return fmt.Errorf("insert seed technician %s: %w", tech.Name, err)
		}
	}

	if err := seedDefaultTenant(ctx, tenants); err != nil {
		return err
	}

	utils.Logger.Infof("seeding: created %d rooms and %d technicians", len(seedRooms), len(seedTechnicians))
	return nil
}

func seedDefaultTenant(ctx context.Context, tenants repositories.TenantRepository) error {
	id := uuid.MustParse(DefaultTenantID)
	if existing, err := tenants.GetByID(ctx, id); err != nil {
		return fmt.Errorf("check existing seed tenant: %w", err)
	} else if existing != nil {
		return nil
	}

	hash, err := utils.HashPassword(DefaultTenantPassword)
	if err != nil {
		return fmt.Errorf("hash seed tenant password: %w", err)
	}
	t := &models.Tenant{
		ID:           id,
		FirstName:    "Demo",
		LastName:     "Tenant",
		Email:        DefaultTenantEmail,
		PhoneNumber:  "+254711111111",
		PasswordHash: hash,
	}
	if err := tenants.Create(ctx, t); err != nil {
		if errors.Is(err, utils.ErrEmailExists) || errors.Is(err, utils.ErrPhoneExists) {
			return nil
		}
		return fmt.Errorf("insert seed tenant: %w", err)
	}
	if err := tenants.MarkEmailVerified(ctx, id); err != nil {
		return fmt.Errorf("verify seed tenant: %w", err)
	}
	utils.Logger.Infof("seeding: created demo tenant id=%s", id)
	return nil
}
