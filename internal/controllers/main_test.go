package controllers

import (
	"context"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/middleware"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

func TestMain(m *testing.M) {
	utils.PasswordHashCost = 4
	utils.Logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// asUser attaches the subject the auth middleware would have set.
func asUser(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUserID, id))
}
