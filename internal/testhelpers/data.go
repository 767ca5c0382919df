package testhelpers

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// TestPassword satisfies the strong-password rules.
const TestPassword = "Str0ng#Passw0rd"

var (
	phoneSeq      = rand.New(rand.NewSource(time.Now().UnixNano())).Int63n(1e8)
	atomicRoomSeq atomic.Int64
)

func init() {
	atomicRoomSeq.Store(rand.New(rand.NewSource(time.Now().UnixNano())).Int63n(90000))
}

// UniquePhone generates a unique E.164 phone number for testing.
func UniquePhone() string {
	return fmt.Sprintf("+2547%08d", atomic.AddInt64(&phoneSeq, 1)%1e8)
}

// UniqueEmail generates a unique email for testing.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@hostel.test", prefix, uuid.NewString()[:13])
}

// CreateTestTenant persists a verified tenant whose password is TestPassword.
func CreateTestTenant(t *testing.T, ctx context.Context, repo repositories.TenantRepository, emailPrefix string) *models.Tenant {
	t.Helper()
	hash, err := utils.HashPassword(TestPassword)
	require.NoError(t, err)

	tenant := &models.Tenant{
		ID:            uuid.New(),
		FirstName:     "Test",
		LastName:      emailPrefix,
		Email:         UniqueEmail(emailPrefix),
		PhoneNumber:   UniquePhone(),
		PasswordHash:  hash,
		EmailVerified: true,
	}
	require.NoError(t, repo.Create(ctx, tenant), "Failed to create test tenant")
	return tenant
}

// CreateTestAdmin persists an admin whose password is TestPassword.
func CreateTestAdmin(t *testing.T, ctx context.Context, repo repositories.AdminRepository, emailPrefix string) *models.Admin {
	t.Helper()
	hash, err := utils.HashPassword(TestPassword)
	require.NoError(t, err)

	admin := &models.Admin{
		ID:           uuid.New(),
		Email:        UniqueEmail(emailPrefix),
		FullName:     "Test Admin",
		PasswordHash: hash,
	}
	require.NoError(t, repo.Create(ctx, admin), "Failed to create test admin")
	return admin
}

// CreateTestRoom persists an available room.
func CreateTestRoom(t *testing.T, ctx context.Context, repo repositories.RoomRepository, number int, price int64) *models.Room {
	t.Helper()
	room := &models.Room{
		ID:         uuid.New(),
		RoomNumber: number,
		RoomType:   "Single",
		BedCount:   1,
		Price:      price,
		Status:     models.RoomStatusAvailable,
	}
	require.NoError(t, repo.Create(ctx, room), "Failed to create test room")
	return room
}

// CreateTestTechnician persists an unassigned technician.
func CreateTestTechnician(t *testing.T, ctx context.Context, repo repositories.TechnicianRepository, specialty models.IssueCategory) *models.Technician {
	t.Helper()
	tech := &models.Technician{
		ID:               uuid.New(),
		Name:             "Tech " + string(specialty),
		Email:            UniqueEmail("tech"),
		PhoneNumber:      UniquePhone(),
		Specialty:        specialty,
		AssignmentStatus: models.TechnicianUnassigned,
	}
	require.NoError(t, repo.Create(ctx, tech), "Failed to create test technician")
	return tech
}
