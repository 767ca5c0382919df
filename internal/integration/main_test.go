//go:build integration

package integration

import (
	"os"
	"testing"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger("hostel-integration")
	utils.PasswordHashCost = 4
	os.Exit(m.Run())
}
